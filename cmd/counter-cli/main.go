// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "counter-cli" increments the greeting counter of an account through a
// deployed counter program.
package main

import (
	"os"

	"github.com/solana-baremetal/counter-cli/cmd/counter-cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
