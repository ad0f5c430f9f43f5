// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clustertest provides an in-memory cluster for exercising code
// written against [cluster.RPC].
package clustertest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solana-baremetal/counter-cli/cluster"
	"github.com/solana-baremetal/counter-cli/consts"
)

const (
	// rent-exempt minimum: (account storage overhead + size) * lamports per byte-year * 2 years
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3_480
	exemptionThreshold     = 2

	DefaultVersion = "1.18.26"
)

var (
	_ cluster.RPC = (*Cluster)(nil)

	ErrInsufficientFunds = errors.New("insufficient funds for fee")
	ErrUnsigned          = errors.New("transaction is not signed")
)

// Handler executes an instruction addressed to a registered program.
type Handler func(accounts []solana.PublicKey, data []byte) error

type Airdrop struct {
	Account  solana.PublicKey
	Lamports uint64
}

// Cluster is a single-node ledger held in memory. Every accepted signature
// is immediately finalized.
type Cluster struct {
	mu sync.Mutex

	Version string
	Fee     uint64

	// FailTransactions marks every submitted transaction as failed on-chain.
	FailTransactions bool

	balances  map[solana.PublicKey]uint64
	accounts  map[solana.PublicKey]*rpc.Account
	handlers  map[solana.PublicKey]Handler
	statuses  map[solana.Signature]*rpc.SignatureStatusesResult
	failures  map[string]error
	airdrops  []Airdrop
	txs       []*solana.Transaction
	slot      uint64
	blockhash solana.Hash
}

func New() *Cluster {
	return &Cluster{
		Version:  DefaultVersion,
		Fee:      consts.LamportsPerSignature,
		balances: make(map[solana.PublicKey]uint64),
		accounts: make(map[solana.PublicKey]*rpc.Account),
		handlers: make(map[solana.PublicKey]Handler),
		statuses: make(map[solana.Signature]*rpc.SignatureStatusesResult),
		failures: make(map[string]error),
	}
}

// RentExemption mirrors the default rent schedule.
func RentExemption(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionThreshold
}

// Fail causes every call to the JSON-RPC [method] to return [err]. A nil
// [err] clears the failure.
func (c *Cluster) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		delete(c.failures, method)
		return
	}
	c.failures[method] = err
}

func (c *Cluster) SetBalance(account solana.PublicKey, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balances[account] = lamports
}

func (c *Cluster) BalanceOf(account solana.PublicKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.balances[account]
}

// SetAccount stores a data account owned by [owner].
func (c *Cluster) SetAccount(account solana.PublicKey, owner solana.PublicKey, data []byte, executable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[account] = &rpc.Account{
		Lamports:   RentExemption(uint64(len(data))),
		Owner:      owner,
		Data:       rpc.DataBytesOrJSONFromBytes(data),
		Executable: executable,
	}
}

// Deploy marks [program] as an executable account served by [handler].
func (c *Cluster) Deploy(program solana.PublicKey, handler Handler) {
	c.SetAccount(program, solana.BPFLoaderUpgradeableProgramID, nil, true)

	c.mu.Lock()
	defer c.mu.Unlock()
	if handler != nil {
		c.handlers[program] = handler
	}
}

// Data returns a copy of the data held by [account].
func (c *Cluster) Data(account solana.PublicKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, ok := c.accounts[account]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), acct.Data.GetBinary()...), true
}

func (c *Cluster) SetData(account solana.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if acct, ok := c.accounts[account]; ok {
		acct.Data = rpc.DataBytesOrJSONFromBytes(data)
	}
}

func (c *Cluster) Airdrops() []Airdrop {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Airdrop(nil), c.airdrops...)
}

func (c *Cluster) Transactions() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*solana.Transaction(nil), c.txs...)
}

func (c *Cluster) failure(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.failures[method]
}

func (c *Cluster) nextSignature(account solana.PublicKey) solana.Signature {
	c.slot++
	var seed [40]byte
	copy(seed[:], account[:])
	binary.BigEndian.PutUint64(seed[32:], c.slot)
	h := sha256.Sum256(seed[:])

	var sig solana.Signature
	copy(sig[:], h[:])
	copy(sig[32:], h[:])
	return sig
}

func (c *Cluster) GetVersion(context.Context) (*rpc.GetVersionResult, error) {
	if err := c.failure("getVersion"); err != nil {
		return nil, err
	}
	return &rpc.GetVersionResult{SolanaCore: c.Version}, nil
}

func (c *Cluster) GetBalance(_ context.Context, account solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if err := c.failure("getBalance"); err != nil {
		return nil, err
	}
	return &rpc.GetBalanceResult{Value: c.BalanceOf(account)}, nil
}

func (c *Cluster) GetAccountInfoWithOpts(_ context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if err := c.failure("getAccountInfo"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	acct, ok := c.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	cp := *acct
	return &rpc.GetAccountInfoResult{Value: &cp}, nil
}

func (c *Cluster) GetMinimumBalanceForRentExemption(_ context.Context, size uint64, _ rpc.CommitmentType) (uint64, error) {
	if err := c.failure("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return RentExemption(size), nil
}

func (c *Cluster) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if err := c.failure("getLatestBlockhash"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.slot++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], c.slot)
	c.blockhash = sha256.Sum256(seed[:])
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            c.blockhash,
			LastValidBlockHeight: c.slot + 150,
		},
	}, nil
}

func (c *Cluster) RequestAirdrop(_ context.Context, account solana.PublicKey, lamports uint64, _ rpc.CommitmentType) (solana.Signature, error) {
	if err := c.failure("requestAirdrop"); err != nil {
		return solana.Signature{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.balances[account] += lamports
	c.airdrops = append(c.airdrops, Airdrop{Account: account, Lamports: lamports})
	sig := c.nextSignature(account)
	c.statuses[sig] = &rpc.SignatureStatusesResult{
		Slot:               c.slot,
		ConfirmationStatus: rpc.ConfirmationStatusFinalized,
	}
	return sig, nil
}

func (c *Cluster) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	if err := c.failure("sendTransaction"); err != nil {
		return solana.Signature{}, err
	}
	if len(tx.Signatures) == 0 || len(tx.Message.AccountKeys) == 0 {
		return solana.Signature{}, ErrUnsigned
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}

	payer := tx.Message.AccountKeys[0]
	sig := tx.Signatures[0]
	fee := c.Fee * uint64(len(tx.Signatures))

	c.mu.Lock()
	if c.balances[payer] < fee {
		c.mu.Unlock()
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrInsufficientFunds, payer)
	}
	c.balances[payer] -= fee
	c.txs = append(c.txs, tx)
	c.slot++
	status := &rpc.SignatureStatusesResult{
		Slot:               c.slot,
		ConfirmationStatus: rpc.ConfirmationStatusFinalized,
	}
	failAll := c.FailTransactions
	c.mu.Unlock()

	if failAll {
		status.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
	} else if err := c.execute(tx); err != nil {
		status.Err = map[string]interface{}{"InstructionError": err.Error()}
	}

	c.mu.Lock()
	c.statuses[sig] = status
	c.mu.Unlock()
	return sig, nil
}

// execute runs each instruction against its program's handler. Handlers are
// invoked without the lock held so they may mutate the cluster.
func (c *Cluster) execute(tx *solana.Transaction) error {
	keys := tx.Message.AccountKeys
	for i, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			return fmt.Errorf("instruction %d: invalid program index", i)
		}
		programID := keys[ix.ProgramIDIndex]

		c.mu.Lock()
		handler, ok := c.handlers[programID]
		c.mu.Unlock()
		if !ok {
			continue
		}

		accounts := make([]solana.PublicKey, 0, len(ix.Accounts))
		for _, idx := range ix.Accounts {
			if int(idx) >= len(keys) {
				return fmt.Errorf("instruction %d: invalid account index", i)
			}
			accounts = append(accounts, keys[idx])
		}
		if err := handler(accounts, ix.Data); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

func (c *Cluster) GetSignatureStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if err := c.failure("getSignatureStatuses"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := &rpc.GetSignatureStatusesResult{
		Value: make([]*rpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		if status, ok := c.statuses[sig]; ok {
			cp := *status
			out.Value[i] = &cp
		}
	}
	return out, nil
}
