// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/ginkgo/v2/formatter"

	"github.com/solana-baremetal/counter-cli/consts"
)

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Fprintf writes a ginkgo formatter template to [w].
//
// e.g.,
//
//	Fprintf(os.Stdout, "{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Fprintf(os.Stderr, "{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Fprintf(w io.Writer, format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(w, s)
}

// FormatBalance renders lamports as SOL.
func FormatBalance(bal uint64) string {
	return fmt.Sprintf("%.9f", float64(bal)/math.Pow10(consts.NativeDecimals))
}

// FormatDelta renders a signed lamport difference as SOL.
func FormatDelta(delta int64) string {
	if delta < 0 {
		// negate after adding one so math.MinInt64 does not overflow
		return "-" + FormatBalance(uint64(-(delta+1))+1)
	}
	return FormatBalance(uint64(delta))
}
