// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0.000000000"},
		{1, "0.000000001"},
		{5_000, "0.000005000"},
		{1_000_000_000, "1.000000000"},
		{2_500_000_000, "2.500000000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatBalance(tt.lamports))
		})
	}
}

func TestFormatDelta(t *testing.T) {
	require := require.New(t)
	require.Equal("0.000005000", FormatDelta(5_000))
	require.Equal("-0.000005000", FormatDelta(-5_000))
	require.Equal("0.000000000", FormatDelta(0))
	require.True(strings.HasPrefix(FormatDelta(math.MinInt64), "-9223372036."))
	require.True(strings.HasPrefix(FormatDelta(math.MaxInt64), "9223372036."))
}

func TestExpandHome(t *testing.T) {
	require := require.New(t)
	home, err := os.UserHomeDir()
	require.NoError(err)

	p, err := ExpandHome("~/.config/solana/id.json")
	require.NoError(err)
	require.Equal(filepath.Join(home, ".config/solana/id.json"), p)

	p, err = ExpandHome("/tmp/id.json")
	require.NoError(err)
	require.Equal("/tmp/id.json", p)
}

func TestFprintf(t *testing.T) {
	require := require.New(t)
	var buf bytes.Buffer
	Fprintf(&buf, "greeted %d time(s)\n", 3)
	require.Contains(buf.String(), "greeted 3 time(s)")
}
