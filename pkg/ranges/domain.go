// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"math"

	"github.com/pkg/errors"
)

// Strategy selects the merge algorithm of a Domain.
type Strategy string

const (
	// StrategyTrack counts range boundaries in a buffer indexed by value, it's
	// O(domain) and only usable for small domains.
	StrategyTrack Strategy = "track"
	// StrategySweep sorts range boundaries and sweeps them, it's O(n log n)
	// and works for any domain.
	StrategySweep Strategy = "sweep"
)

// MaxTrackSpan is the largest domain (number of values) the track strategy
// is allowed to allocate a buffer for.
const MaxTrackSpan = 1 << 16

// Domain is a set of values ranges are parsed, merged and formatted over.
type Domain[T Value] struct {
	Name     string
	Min      T
	Max      T
	Strategy Strategy
}

var (
	// Bounded is the byte domain merged with the track strategy.
	Bounded = &Domain[uint8]{
		Name:     "bounded",
		Min:      0,
		Max:      math.MaxUint8,
		Strategy: StrategyTrack,
	}

	// General is the signed domain merged with the sweep strategy.
	General = &Domain[int64]{
		Name:     "general",
		Min:      math.MinInt64,
		Max:      math.MaxInt64,
		Strategy: StrategySweep,
	}

	// VLAN is the range of usable 802.1Q VLAN IDs.
	VLAN = &Domain[uint16]{
		Name:     "vlan",
		Min:      1,
		Max:      4094,
		Strategy: StrategyTrack,
	}

	// Port is the TCP/UDP port domain.
	Port = &Domain[uint16]{
		Name:     "port",
		Min:      0,
		Max:      math.MaxUint16,
		Strategy: StrategyTrack,
	}
)

// Validate checks the domain bounds and that the strategy can serve them.
func (d *Domain[T]) Validate() error {
	if d == nil {
		return errors.New("domain is nil")
	}
	if d.Name == "" {
		return errors.New("domain name is required")
	}
	if d.Min > d.Max {
		return errors.Errorf("domain %s: min > max", d.Name)
	}

	switch d.Strategy {
	case StrategySweep:
	case StrategyTrack:
		if d.span() > MaxTrackSpan {
			return errors.Errorf("domain %s: too wide for %s strategy, max %d values", d.Name, d.Strategy, MaxTrackSpan)
		}
	default:
		return errors.Errorf("domain %s: unknown strategy %q", d.Name, d.Strategy)
	}

	return nil
}

// Signed reports whether the domain accepts negative literals.
func (d *Domain[T]) Signed() bool {
	return isSigned[T]()
}

// Covers reports whether v is within the domain bounds.
func (d *Domain[T]) Covers(v T) bool {
	return d.Min <= v && v <= d.Max
}

func (d *Domain[T]) span() uint64 {
	return Range[T]{From: d.Min, To: d.Max}.Size()
}

// Normalize parses text, merges the ranges and formats them back.
func (d *Domain[T]) Normalize(text string) (string, error) {
	set, err := d.Parse(text)
	if err != nil {
		return "", err
	}

	return d.Format(d.Merge(set)), nil
}

// Format renders the set as comma separated ranges, see Range.String.
func (d *Domain[T]) Format(set Set[T]) string {
	return set.String()
}
