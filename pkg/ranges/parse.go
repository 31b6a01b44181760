// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	TokenSeparator = ","
	RangeSeparator = "-"
)

// signedTokenRe doesn't confuse the range separator with the sign of the end
var signedTokenRe = regexp.MustCompile(`^(-?\d*)-(-?\d+)$`)

// Parse parses a comma separated list of "<from>-<to>" tokens, from could be
// omitted and defaults to 0. Any bad token fails the whole parse with
// a *ParseError.
func (d *Domain[T]) Parse(text string) (Set[T], error) {
	tokens := strings.Split(text, TokenSeparator)
	res := make(Set[T], 0, len(tokens))

	for _, token := range tokens {
		token = strings.TrimSpace(token)

		r, err := d.parseRange(token)
		if err != nil {
			return nil, err
		}

		res = append(res, r)
	}

	return res, nil
}

func (d *Domain[T]) parseRange(token string) (Range[T], error) {
	var from, to string

	if d.Signed() {
		m := signedTokenRe.FindStringSubmatch(token)
		if m == nil {
			return Range[T]{}, badFormat(token, nil)
		}
		from, to = m[1], m[2]
	} else {
		parts := strings.Split(token, RangeSeparator)
		if len(parts) != 2 {
			return Range[T]{}, badFormat(token, errors.Errorf("expected 2 parts, got %d", len(parts)))
		}
		from, to = parts[0], parts[1]
	}

	if from == "" {
		from = "0"
	}

	r := Range[T]{}
	var err error
	if r.From, err = d.parseValue(from); err != nil {
		return Range[T]{}, badNumber(token, err)
	}
	if r.To, err = d.parseValue(to); err != nil {
		return Range[T]{}, badNumber(token, err)
	}

	if r.From > r.To {
		return Range[T]{}, badFormat(token, errors.Errorf("from %s > to %s", from, to))
	}

	return r, nil
}

func (d *Domain[T]) parseValue(s string) (T, error) {
	if d.Signed() {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err //nolint:wrapcheck
		}
		if v < int64(d.Min) || v > int64(d.Max) {
			return 0, &strconv.NumError{Func: "ParseInt", Num: s, Err: strconv.ErrRange}
		}

		return T(v), nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	if v < uint64(d.Min) || v > uint64(d.Max) {
		return 0, &strconv.NumError{Func: "ParseUint", Num: s, Err: strconv.ErrRange}
	}

	return T(v), nil
}
