// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-baremetal/counter-cli/consts"
	"github.com/solana-baremetal/counter-cli/utils"
)

type Status int

const (
	// StatusCompleted means the demonstration ran and the cost was reported.
	StatusCompleted Status = iota
	// StatusNotDeployed means the program id has no executable account.
	StatusNotDeployed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusNotDeployed:
		return "not-deployed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Balance struct {
	Lamports uint64 `json:"lamports" yaml:"lamports"`
}

func (b Balance) SOL() float64 {
	return float64(b.Lamports) / consts.LamportsPerSOL
}

func (b Balance) String() string {
	return utils.FormatBalance(b.Lamports)
}

// Cost is the lamports spent between two snapshots. It is negative when the
// balance grew.
type Cost struct {
	Lamports int64 `json:"lamports" yaml:"lamports"`
}

// The lamport supply is far below math.MaxInt64, so neither balance overflows
// the signed conversion.
func CostBetween(start Balance, end Balance) Cost {
	return Cost{Lamports: int64(start.Lamports) - int64(end.Lamports)}
}

func (c Cost) SOL() float64 {
	return float64(c.Lamports) / consts.LamportsPerSOL
}

func (c Cost) String() string {
	return utils.FormatDelta(c.Lamports)
}

type Result struct {
	Status    Status            `json:"status" yaml:"status"`
	Payer     solana.PublicKey  `json:"payer" yaml:"payer"`
	ProgramID solana.PublicKey  `json:"programId" yaml:"programId"`
	Start     Balance           `json:"startBalance" yaml:"startBalance"`
	End       Balance           `json:"endBalance" yaml:"endBalance"`
	Cost      Cost              `json:"cost" yaml:"cost"`
	Counter   *uint32           `json:"counter,omitempty" yaml:"counter,omitempty"`
	Signature *solana.Signature `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// ExitCode is the process status for a run that returned without error.
func (*Result) ExitCode() int {
	return 0
}

// ExitCode maps the outcome of [Counter.Run] to a process exit status.
func ExitCode(res *Result, err error) int {
	if err != nil || res == nil {
		return 1
	}
	return res.ExitCode()
}
