// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	"go.githedgehog.com/rangemerge/pkg/render"
	kyaml "sigs.k8s.io/yaml"
)

func results(t *testing.T, domain string, inputs ...string) render.Results {
	t.Helper()

	m, ok := ranges.Lookup(domain)
	require.True(t, ok)

	res := render.Results{}
	for _, in := range inputs {
		r, err := m.Normalize(in)
		require.NoError(t, err)
		res = append(res, r)
	}

	return res
}

func TestRenderResults(t *testing.T) {
	res := results(t, "general", "1-5,3-7", "-4, 20-30, 2-7")

	for _, tt := range []struct {
		output render.OutputType
		check  func(t *testing.T, data []byte)
	}{
		{
			output: render.OutputTypeText,
			check: func(t *testing.T, data []byte) {
				require.Equal(t, "1-7\n-7, 20-30\n", string(data))
			},
		},
		{
			output: render.OutputTypeUndefined,
			check: func(t *testing.T, data []byte) {
				require.Equal(t, "1-7\n-7, 20-30\n", string(data))
			},
		},
		{
			output: render.OutputTypeTable,
			check: func(t *testing.T, data []byte) {
				require.Contains(t, string(data), "1-5,3-7")
				require.Contains(t, string(data), "20-30")
				require.Contains(t, string(data), "general")
			},
		},
		{
			output: render.OutputTypeJSON,
			check: func(t *testing.T, data []byte) {
				got := render.Results{}
				require.NoError(t, json.Unmarshal(data, &got))
				require.Equal(t, res, got)
			},
		},
		{
			output: render.OutputTypeYAML,
			check: func(t *testing.T, data []byte) {
				got := render.Results{}
				require.NoError(t, kyaml.Unmarshal(data, &got))
				require.Equal(t, res, got)
			},
		},
	} {
		t.Run(string(tt.output), func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, render.Render(tt.output, buf, res))
			tt.check(t, buf.Bytes())
		})
	}
}

func TestRenderInvalidOutput(t *testing.T) {
	require.Error(t, render.Render("xml", &bytes.Buffer{}, render.Results{}))
}

func TestRenderDomains(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, render.Render(render.OutputTypeText, buf, render.Domains(ranges.Domains())))
	require.Equal(t, "bounded\ngeneral\nport\nvlan\n", buf.String())

	buf.Reset()
	require.NoError(t, render.Render(render.OutputTypeTable, buf, render.Domains(ranges.Domains())))
	require.Contains(t, buf.String(), "4094")
	require.Contains(t, buf.String(), "sweep")
}

func TestRenderTable(t *testing.T) {
	out := render.RenderTable([]string{"Name", "Size"}, [][]string{{"first", "1"}, {"second", "22"}})

	lines := []string{}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 3, out)
	require.Contains(t, strings.ToUpper(lines[0]), "NAME")
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "first"), out)
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[2]), "second"), out)
	require.NotContains(t, out, "|")
}
