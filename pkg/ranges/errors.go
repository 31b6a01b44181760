// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrBadFormat = errors.New("bad range format")
	ErrBadNumber = errors.New("bad number")
)

// ParseError is returned by Parse for the first token it can't accept. Kind
// is either ErrBadFormat or ErrBadNumber, Err is the underlying cause if any
// (e.g. *strconv.NumError).
type ParseError struct {
	Kind  error
	Token string
	Err   error
}

var _ error = (*ParseError)(nil)

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %s", e.Kind, e.Token, e.Err)
	}

	return fmt.Sprintf("%s: %q", e.Kind, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == e.Kind //nolint:errorlint,err113
}

func badFormat(token string, err error) *ParseError {
	return &ParseError{Kind: ErrBadFormat, Token: token, Err: err}
}

func badNumber(token string, err error) *ParseError {
	return &ParseError{Kind: ErrBadNumber, Token: token, Err: err}
}
