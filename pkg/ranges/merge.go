// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"cmp"
	"slices"
)

// Merge combines overlapping and touching ranges into a sorted set of
// disjoint ranges. It doesn't modify the input set.
func (d *Domain[T]) Merge(set Set[T]) Set[T] {
	if d.Strategy == StrategyTrack && d.span() <= MaxTrackSpan && d.coversAll(set) {
		return d.trackMerge(set)
	}

	return sweepMerge(set)
}

func (d *Domain[T]) coversAll(set Set[T]) bool {
	for _, r := range set {
		if !d.Covers(r.From) || !d.Covers(r.To) {
			return false
		}
	}

	return true
}

// index is the offset of v from the domain minimum, it can't overflow even
// for signed domains.
func (d *Domain[T]) index(v T) int {
	return int(uint64(v) - uint64(d.Min))
}

type trackSlot struct {
	delta int32
	point bool
}

// trackMerge counts range starts and ends in a buffer indexed by value.
// A range opens where the running count leaves zero and closes where it
// returns to zero, so ranges sharing a boundary value are merged.
func (d *Domain[T]) trackMerge(set Set[T]) Set[T] {
	track := make([]trackSlot, d.span())

	for _, r := range set {
		r = r.normalized()
		from, to := d.index(r.From), d.index(r.To)

		track[from].delta++
		track[to].delta--
		if from == to {
			track[from].point = true
		}
	}

	res := Set[T]{}
	cnt := int32(0)
	open := 0

	for idx, slot := range track {
		switch {
		case cnt == 0 && slot.delta > 0:
			open = idx
		case cnt == 0 && slot.delta == 0 && slot.point:
			res = append(res, Range[T]{From: d.Min + T(idx), To: d.Min + T(idx)})
		case cnt > 0 && cnt+slot.delta == 0:
			res = append(res, Range[T]{From: d.Min + T(open), To: d.Min + T(idx)})
		}
		cnt += slot.delta
	}

	return res
}

type Boundary uint8

const (
	BoundaryStart Boundary = iota + 1
	BoundaryEnd
)

// compareBoundaries orders a start before an end at the same value, so a
// range opening where another one closes keeps the merged range open.
func compareBoundaries(a, b Boundary) int {
	switch {
	case a == b:
		return 0
	case a == BoundaryStart:
		return -1
	default:
		return 1
	}
}

type event[T Value] struct {
	value    T
	boundary Boundary
}

func compareEvents[T Value](a, b event[T]) int {
	if c := cmp.Compare(a.value, b.value); c != 0 {
		return c
	}

	return compareBoundaries(a.boundary, b.boundary)
}

// sweepMerge sorts range boundaries and walks them keeping the number of
// currently open ranges.
func sweepMerge[T Value](set Set[T]) Set[T] {
	events := make([]event[T], 0, 2*len(set))
	for _, r := range set {
		r = r.normalized()
		events = append(events,
			event[T]{value: r.From, boundary: BoundaryStart},
			event[T]{value: r.To, boundary: BoundaryEnd},
		)
	}

	slices.SortFunc(events, compareEvents[T])

	res := Set[T]{}
	cnt := 0
	var open T

	for _, ev := range events {
		switch {
		case cnt == 0 && ev.boundary == BoundaryStart:
			open = ev.value
		case cnt == 1 && ev.boundary == BoundaryEnd:
			res = append(res, Range[T]{From: open, To: ev.value})
		}

		if ev.boundary == BoundaryStart {
			cnt++
		} else {
			cnt--
		}
	}

	return res
}
