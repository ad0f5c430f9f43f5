// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name   = "counter-cli"
	Symbol = "SOL"

	// NativeDecimals is the number of decimal places between SOL and lamports.
	NativeDecimals = 9
	LamportsPerSOL = 1_000_000_000

	// LamportsPerSignature is the base fee charged per transaction signature.
	LamportsPerSignature = 5_000
	// FeeSignatureBudget is how many signatures the payer should be able to
	// cover before an airdrop is requested.
	FeeSignatureBudget = 100

	DefaultRPCURL = "http://127.0.0.1:8899"

	// IncorrectAccount is an address unrelated to the counter program's
	// state. Interacting with it demonstrates the missing-account failure.
	IncorrectAccount = "HzThhJAw99274RoKNfdhnskCdh4wAMFG2X4yBt2KDkgg"
)
