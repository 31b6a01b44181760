// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"slices"

	"github.com/maruel/natural"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Merger is a Domain with the value type erased, so it could be picked by
// name at runtime.
type Merger interface {
	Info() DomainInfo
	Normalize(text string) (*Result, error)
	Check(text string) (*Result, error)
}

type DomainInfo struct {
	Name     string   `json:"name"`
	Min      string   `json:"min"`
	Max      string   `json:"max"`
	Signed   bool     `json:"signed"`
	Strategy Strategy `json:"strategy"`
}

type Span struct {
	From string `json:"from"`
	To   string `json:"to"`
	Size uint64 `json:"size"`
}

type Result struct {
	Domain      string `json:"domain"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Ranges      []Span `json:"ranges"`
	InputCount  int    `json:"inputCount"`
	OutputCount int    `json:"outputCount"`
	Size        uint64 `json:"size"`
	Normalized  bool   `json:"normalized"`
}

type merger[T Value] struct {
	domain *Domain[T]
}

// NewMerger wraps the domain into a Merger, the domain should be valid.
func NewMerger[T Value](d *Domain[T]) (Merger, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid domain")
	}

	return &merger[T]{domain: d}, nil
}

func (m *merger[T]) Info() DomainInfo {
	return DomainInfo{
		Name:     m.domain.Name,
		Min:      formatValue(m.domain.Min),
		Max:      formatValue(m.domain.Max),
		Signed:   m.domain.Signed(),
		Strategy: m.domain.Strategy,
	}
}

func (m *merger[T]) Normalize(text string) (*Result, error) {
	_, res, err := m.normalize(text)

	return res, err
}

// Check is Normalize that also fails if the input isn't normalized already.
func (m *merger[T]) Check(text string) (*Result, error) {
	set, res, err := m.normalize(text)
	if err != nil {
		return nil, err
	}

	if !res.Normalized {
		return res, errors.Wrapf(set.CheckOverlap(), "not normalized")
	}

	return res, nil
}

// normalize returns the parsed input along with the result.
func (m *merger[T]) normalize(text string) (Set[T], *Result, error) {
	set, err := m.domain.Parse(text)
	if err != nil {
		return nil, nil, err
	}

	merged := m.domain.Merge(set)

	return set, &Result{
		Domain: m.domain.Name,
		Input:  text,
		Output: m.domain.Format(merged),
		Ranges: lo.Map(merged, func(r Range[T], _ int) Span {
			return Span{From: formatValue(r.From), To: formatValue(r.To), Size: r.Size()}
		}),
		InputCount:  len(set),
		OutputCount: len(merged),
		Size:        merged.Size(),
		Normalized:  set.IsNormalized(),
	}, nil
}

var registry = map[string]Merger{}

func init() {
	for _, m := range []Merger{
		lo.Must(NewMerger(Bounded)),
		lo.Must(NewMerger(General)),
		lo.Must(NewMerger(VLAN)),
		lo.Must(NewMerger(Port)),
	} {
		registry[m.Info().Name] = m
	}
}

// Lookup returns a registered domain by name.
func Lookup(name string) (Merger, bool) {
	m, ok := registry[name]

	return m, ok
}

// Names returns names of all registered domains in natural order.
func Names() []string {
	names := lo.Keys(registry)
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})

	return names
}

func Domains() []DomainInfo {
	return lo.Map(Names(), func(name string, _ int) DomainInfo {
		return registry[name].Info()
	})
}
