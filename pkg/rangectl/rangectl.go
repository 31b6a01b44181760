// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package rangectl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	"go.githedgehog.com/rangemerge/pkg/render"
	"golang.org/x/sync/errgroup"
)

var ErrNotNormalized = errors.New("input is not normalized")

type MergeOptions struct {
	Domain   string
	Output   render.OutputType
	Parallel int
	Inputs   []string
}

// Merge normalizes every input and renders results in the input order.
func Merge(ctx context.Context, w io.Writer, options *MergeOptions) error {
	m, err := lookup(options.Domain)
	if err != nil {
		return err
	}

	if len(options.Inputs) == 0 {
		return errors.New("no inputs")
	}

	results := make(render.Results, len(options.Inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(options.Parallel, 1))

	for idx, input := range options.Inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck
			}

			res, err := m.Normalize(input)
			if err != nil {
				return errors.Wrapf(err, "input #%d", idx+1)
			}
			results[idx] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}

	slog.Debug("Merged", "domain", options.Domain, "inputs", len(results))

	return errors.Wrapf(render.Render(options.Output, w, results), "rendering results")
}

type CheckOptions struct {
	Domain string
	Diff   bool
	Inputs []string
}

// Check reports for every input if it's already normalized and fails if any
// of them isn't.
func Check(_ context.Context, w io.Writer, options *CheckOptions) error {
	m, err := lookup(options.Domain)
	if err != nil {
		return err
	}

	if len(options.Inputs) == 0 {
		return errors.New("no inputs")
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	notNormalized := 0
	for idx, input := range options.Inputs {
		res, err := m.Check(input)
		if res == nil {
			return errors.Wrapf(err, "input #%d", idx+1)
		}

		if err == nil {
			fmt.Fprintf(w, "%s %s\n", green("OK"), input)

			continue
		}

		notNormalized++
		fmt.Fprintf(w, "%s %s: %s\n", red("NOT NORMALIZED"), input, err)

		if options.Diff {
			diff, err := Diff(input, res.Output)
			if err != nil {
				return err
			}
			fmt.Fprint(w, diff)
		}
	}

	if notNormalized > 0 {
		return errors.Wrapf(ErrNotNormalized, "%d of %d inputs", notNormalized, len(options.Inputs))
	}

	return nil
}

// Diff is a unified diff between the input and the normalized output with
// one range per line.
func Diff(input, output string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(splitTokens(input)),
		B:        difflib.SplitLines(splitTokens(output)),
		FromFile: "Input",
		ToFile:   "Normalized",
		Context:  2,
	}

	diffText, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.Wrapf(err, "failed to generate diff")
	}

	return diffText, nil
}

func splitTokens(in string) string {
	str := &strings.Builder{}
	for _, token := range strings.Split(in, ranges.TokenSeparator) {
		str.WriteString(strings.TrimSpace(token))
		str.WriteString("\n")
	}

	return str.String()
}

func Domains(w io.Writer, output render.OutputType) error {
	return errors.Wrapf(render.Render(output, w, render.Domains(ranges.Domains())), "rendering domains")
}

// DefaultMaxLineBytes matches the default HTTP body limit.
const DefaultMaxLineBytes = 1 << 20

const initialLineBuffer = 64 * 1024

// ReadInputs reads non-empty lines up to maxLineBytes long each (0 means
// DefaultMaxLineBytes), lines starting with # are skipped.
func ReadInputs(r io.Reader, maxLineBytes int) ([]string, error) {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	inputs := []string{}

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, min(initialLineBuffer, maxLineBytes)), maxLineBytes)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading inputs")
	}

	return inputs, nil
}

func lookup(domain string) (ranges.Merger, error) {
	m, ok := ranges.Lookup(domain)
	if !ok {
		return nil, errors.Errorf("unknown domain %q, available: %s", domain, strings.Join(ranges.Names(), ", "))
	}

	return m, nil
}
