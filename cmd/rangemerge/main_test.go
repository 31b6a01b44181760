// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.githedgehog.com/rangemerge/pkg/ranges"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	err := newApp(t.Context(), strings.NewReader(stdin), out).Run(append([]string{"rangemerge"}, args...))

	return out.String(), err
}

func TestAppMerge(t *testing.T) {
	dir := t.TempDir()

	inputsFile := filepath.Join(dir, "inputs.txt")
	require.NoError(t, os.WriteFile(inputsFile, []byte("# negative starts\n-5--3,-4-2\n"), 0o600))

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("domain: bounded\n"), 0o600))

	for _, tt := range []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{
			name:     "zero-start-after-dashes",
			args:     []string{"merge", "--", "-4, 20-30, 2-7"},
			expected: "-7, 20-30\n",
		},
		{
			name:     "negative-start-after-dashes",
			args:     []string{"merge", "--domain", "general", "--", "-5--3,-4-2", "1-5,3-7"},
			expected: "-5-2\n1-7\n",
		},
		{
			name:     "plain-args",
			args:     []string{"merge", "1-5,3-7"},
			expected: "1-7\n",
		},
		{
			name:     "stdin",
			stdin:    "-100, 50-255\n\n1-2\n",
			args:     []string{"merge", "-d", "bounded"},
			expected: "-255\n1-2\n",
		},
		{
			name:     "file",
			args:     []string{"merge", "--file", inputsFile},
			expected: "-5-2\n",
		},
		{
			name:     "config-domain",
			args:     []string{"--config", cfgFile, "merge", "--", "-100, 50-255"},
			expected: "-255\n",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestAppCheckRoundTrip(t *testing.T) {
	merged, err := run(t, "", "merge", "--", "-4, 20-30, 2-7")
	require.NoError(t, err)

	out, err := run(t, "", "check", "--", strings.TrimSpace(merged))
	require.NoError(t, err)
	require.Contains(t, out, "OK -7, 20-30")

	_, err = run(t, "", "check", "--", "-4, 2-7")
	require.Error(t, err)
}

func TestAppErrors(t *testing.T) {
	_, err := run(t, "", "merge", "--domain", "bounded", "--", "300-310")
	require.ErrorIs(t, err, ranges.ErrBadNumber)

	_, err = run(t, "", "merge", "--domain", "float", "1-2")
	require.ErrorContains(t, err, "invalid flags")
}

func TestAppDomains(t *testing.T) {
	out, err := run(t, "", "domains")
	require.NoError(t, err)
	require.Equal(t, "bounded\ngeneral\nport\nvlan\n", out)
}

func TestSetupLogger(t *testing.T) {
	dir := t.TempDir()

	logFile := filepath.Join(dir, "logs", "rangemerge.log")
	require.NoError(t, setupLogger(false, logFile))
	require.FileExists(t, logFile)

	notDir := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(notDir, nil, 0o600))
	require.Error(t, setupLogger(false, filepath.Join(notDir, "rangemerge.log")))

	require.NoError(t, setupLogger(true, ""))
}
