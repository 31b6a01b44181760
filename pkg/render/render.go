// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pkg/errors"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	kyaml "sigs.k8s.io/yaml"
)

type OutputType string

const (
	OutputTypeUndefined OutputType = ""
	OutputTypeText      OutputType = "text"
	OutputTypeTable     OutputType = "table"
	OutputTypeJSON      OutputType = "json"
	OutputTypeYAML      OutputType = "yaml"
)

var OutputTypes = []OutputType{OutputTypeText, OutputTypeTable, OutputTypeJSON, OutputTypeYAML}

type Out interface {
	MarshalText() (string, error)
	MarshalTable() (string, error)
}

// Results is the output of the merge command, one result per input.
type Results []*ranges.Result

var _ Out = Results(nil)

func (r Results) MarshalText() (string, error) {
	str := &strings.Builder{}
	for _, res := range r {
		str.WriteString(res.Output)
		str.WriteString("\n")
	}

	return str.String(), nil
}

func (r Results) MarshalTable() (string, error) {
	data := [][]string{}
	for _, res := range r {
		data = append(data, []string{
			res.Domain,
			res.Input,
			res.Output,
			strconv.Itoa(res.InputCount) + " -> " + strconv.Itoa(res.OutputCount),
			humanize.Comma(int64(min(res.Size, uint64(1<<63-1)))), //nolint:gosec
		})
	}

	return RenderTable([]string{"Domain", "Input", "Output", "Ranges", "Size"}, data), nil
}

// Domains is the output of the domains command.
type Domains []ranges.DomainInfo

var _ Out = Domains(nil)

func (d Domains) MarshalText() (string, error) {
	str := &strings.Builder{}
	for _, info := range d {
		str.WriteString(info.Name)
		str.WriteString("\n")
	}

	return str.String(), nil
}

func (d Domains) MarshalTable() (string, error) {
	data := [][]string{}
	for _, info := range d {
		data = append(data, []string{
			info.Name,
			info.Min,
			info.Max,
			strconv.FormatBool(info.Signed),
			string(info.Strategy),
		})
	}

	return RenderTable([]string{"Name", "Min", "Max", "Signed", "Strategy"}, data), nil
}

func Render[TOut Out](output OutputType, w io.Writer, out TOut) error {
	if output == OutputTypeUndefined {
		output = OutputTypeText
	}
	if !slices.Contains(OutputTypes, output) {
		return errors.Errorf("invalid output type: %s", output)
	}

	var data []byte
	var err error
	switch output {
	case OutputTypeText:
		dataS, err := out.MarshalText()
		if err != nil {
			return errors.Wrapf(err, "failed to marshal output as text")
		}

		data = []byte(dataS)
	case OutputTypeTable:
		dataS, err := out.MarshalTable()
		if err != nil {
			return errors.Wrapf(err, "failed to marshal output as table")
		}

		data = []byte(dataS)
	case OutputTypeYAML:
		data, err = kyaml.Marshal(out)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal output as yaml")
		}
	case OutputTypeJSON:
		data, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "failed to marshal output as json")
		}
		data = append(data, '\n')
	default:
		return errors.Errorf("output type %s is not implemented", output)
	}

	if _, err := w.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write output")
	}

	return nil
}

// tableCell is shared by header and rows: left aligned, wrapped, with wide
// right padding instead of borders.
var tableCell = tw.CellConfig{
	Formatting: tw.CellFormatting{
		AutoWrap:  tw.WrapNormal,
		Alignment: tw.AlignLeft,
	},
	Padding: tw.CellPadding{Global: tw.Padding{Right: "    "}},
}

// RenderTable renders a borderless table, errors are logged and rendered as
// a single line.
func RenderTable(headers []string, data [][]string) string {
	str := &strings.Builder{}

	table := tablewriter.NewTable(str,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Lines: tw.LinesNone, Separators: tw.SeparatorsNone},
		})),
		tablewriter.WithConfig(tablewriter.Config{Header: tableCell, Row: tableCell}),
	)
	table.Header(headers)

	if err := table.Bulk(data); err != nil {
		slog.Error("Failed to add table rows", "err", err)

		return "Error: " + err.Error() + "\n"
	}
	if err := table.Render(); err != nil {
		slog.Error("Failed to render table", "err", err)

		return "Error: " + err.Error() + "\n"
	}

	return str.String()
}
