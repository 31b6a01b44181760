// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

// Value is any integer type a Domain can be built over.
type Value interface {
	constraints.Integer
}

// Range is a closed interval, both ends are covered.
type Range[T Value] struct {
	From T `json:"from"`
	To   T `json:"to"`
}

// Set is an ordered collection of ranges. It's in insertion order until
// merged, sorted and disjoint afterwards.
type Set[T Value] []Range[T]

// String renders the range as "<from>-<to>" with from omitted when it's 0.
func (r Range[T]) String() string {
	if r.From == 0 {
		return "-" + formatValue(r.To)
	}

	return formatValue(r.From) + "-" + formatValue(r.To)
}

func (r Range[T]) normalized() Range[T] {
	if r.From > r.To {
		return Range[T]{From: r.To, To: r.From}
	}

	return r
}

// Size is the number of integer points covered, saturated at MaxUint64.
func (r Range[T]) Size() uint64 {
	r = r.normalized()
	if isSigned[T]() {
		from, to := int64(r.From), int64(r.To)
		if from < 0 && to >= 0 {
			// |from| + to + 1 may not fit into int64
			size := uint64(-(from + 1)) + uint64(to) + 2
			if size == 0 {
				return math.MaxUint64
			}

			return size
		}

		return uint64(to-from) + 1
	}

	size := uint64(r.To) - uint64(r.From) + 1
	if size == 0 {
		return math.MaxUint64
	}

	return size
}

func (s Set[T]) String() string {
	return strings.Join(lo.Map(s, func(r Range[T], _ int) string {
		return r.String()
	}), ", ")
}

// Size is the total number of points covered by a normalized set.
func (s Set[T]) Size() uint64 {
	total := uint64(0)
	for _, r := range s {
		size := r.Size()
		if total > math.MaxUint64-size {
			return math.MaxUint64
		}
		total += size
	}

	return total
}

// IsNormalized reports whether the set is sorted with no overlapping or
// touching ranges, which is the shape Merge produces.
func (s Set[T]) IsNormalized() bool {
	return s.CheckOverlap() == nil
}

// CheckOverlap returns an error describing the first pair of ranges that
// breaks the normalized order.
func (s Set[T]) CheckOverlap() error {
	for idx := range s {
		if s[idx].From > s[idx].To {
			return errors.Errorf("invalid range %d: from > to: %s", idx, s[idx])
		}
		if idx == 0 {
			continue
		}
		if s[idx-1].From > s[idx].From {
			return errors.Errorf("ranges not sorted: %s and %s", s[idx-1], s[idx])
		}
		if s[idx-1].To >= s[idx].From {
			return errors.Errorf("ranges overlap: %s and %s", s[idx-1], s[idx])
		}
	}

	return nil
}

// Contains reports whether v is covered by the set. The set must be normalized.
func (s Set[T]) Contains(v T) bool {
	idx := sort.Search(len(s), func(i int) bool {
		return s[i].To >= v
	})

	return idx < len(s) && s[idx].From <= v
}

func isSigned[T Value]() bool {
	var zero T

	return ^zero < zero
}

func formatValue[T Value](v T) string {
	if isSigned[T]() {
		return strconv.FormatInt(int64(v), 10)
	}

	return strconv.FormatUint(uint64(v), 10)
}
