// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package ranges_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.githedgehog.com/rangemerge/pkg/ranges"
)

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"bounded", "general", "port", "vlan"}, ranges.Names())

	m, ok := ranges.Lookup("bounded")
	require.True(t, ok)
	require.Equal(t, ranges.DomainInfo{
		Name:     "bounded",
		Min:      "0",
		Max:      "255",
		Signed:   false,
		Strategy: ranges.StrategyTrack,
	}, m.Info())

	_, ok = ranges.Lookup("magic")
	require.False(t, ok)

	require.Len(t, ranges.Domains(), 4)
	require.Equal(t, "-9223372036854775808", ranges.Domains()[1].Min)
}

func TestMergerNormalize(t *testing.T) {
	m, ok := ranges.Lookup("general")
	require.True(t, ok)

	res, err := m.Normalize("-4, 20-30, 2-7, -10--8")
	require.NoError(t, err)
	require.Equal(t, &ranges.Result{
		Domain: "general",
		Input:  "-4, 20-30, 2-7, -10--8",
		Output: "-10--8, -7, 20-30",
		Ranges: []ranges.Span{
			{From: "-10", To: "-8", Size: 3},
			{From: "0", To: "7", Size: 8},
			{From: "20", To: "30", Size: 11},
		},
		InputCount:  4,
		OutputCount: 3,
		Size:        22,
		Normalized:  false,
	}, res)

	_, err = m.Normalize("1-2-3")
	require.ErrorIs(t, err, ranges.ErrBadFormat)
}

func TestMergerCheck(t *testing.T) {
	m, ok := ranges.Lookup("bounded")
	require.True(t, ok)

	res, err := m.Check("-7, 20-30")
	require.NoError(t, err)
	require.True(t, res.Normalized)

	res, err = m.Check("1-5, 3-7")
	require.EqualError(t, err, "not normalized: ranges overlap: 1-5 and 3-7")
	require.NotNil(t, res)
	require.False(t, res.Normalized)
	require.Equal(t, "1-7", res.Output)

	res, err = m.Check("10-20, 1-5")
	require.EqualError(t, err, "not normalized: ranges not sorted: 10-20 and 1-5")
	require.Equal(t, "1-5, 10-20", res.Output)

	res, err = m.Check("300-310")
	require.ErrorIs(t, err, ranges.ErrBadNumber)
	require.Nil(t, res)
}

func TestNewMergerInvalidDomain(t *testing.T) {
	_, err := ranges.NewMerger(&ranges.Domain[uint32]{Name: "wide", Min: 0, Max: 1 << 30, Strategy: ranges.StrategyTrack})
	require.Error(t, err)
}
