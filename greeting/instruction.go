// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package greeting

import "github.com/gagliardetto/solana-go"

// NewGreetInstruction increments the counter stored in [account]. The counter
// program treats every instruction as a greeting, so the payload is empty.
func NewGreetInstruction(programID solana.PublicKey, account solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			{PublicKey: account, IsWritable: true, IsSigner: false},
		},
		[]byte{},
	)
}
