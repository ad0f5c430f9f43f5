// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultConfirmTimeout = 60 * time.Second

	methodGetVersion           = "getVersion"
	methodGetBalance           = "getBalance"
	methodGetAccountInfo       = "getAccountInfo"
	methodGetRentExemption     = "getMinimumBalanceForRentExemption"
	methodGetLatestBlockhash   = "getLatestBlockhash"
	methodRequestAirdrop       = "requestAirdrop"
	methodSendTransaction      = "sendTransaction"
	methodGetSignatureStatuses = "getSignatureStatuses"
)

type Option func(*Client)

func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = d }
}

// Client is a connection to a single cluster at a fixed commitment level.
type Client struct {
	rpc        RPC
	uri        string
	commitment rpc.CommitmentType

	log            logging.Logger
	metrics        *Metrics
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// Dial opens the JSON-RPC transport for [uri].
func Dial(uri string) RPC {
	return rpc.New(normalizeURI(uri))
}

func normalizeURI(uri string) string {
	return strings.TrimSuffix(uri, "/")
}

func NewWithRPC(r RPC, uri string, commitment rpc.CommitmentType, opts ...Option) *Client {
	c := &Client{
		rpc:            r,
		uri:            normalizeURI(uri),
		commitment:     commitment,
		log:            logging.NoLog{},
		pollInterval:   DefaultPollInterval,
		confirmTimeout: DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URI() string {
	return c.uri
}

func (c *Client) Commitment() rpc.CommitmentType {
	return c.commitment
}

func (c *Client) observe(method string, err error) error {
	c.metrics.observeCall(method, err)
	if err != nil {
		c.log.Debug("rpc call failed",
			zap.String("method", method),
			zap.Error(err),
		)
	}
	return err
}

// Version returns the core version reported by the cluster.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.rpc.GetVersion(ctx)
	if err := c.observe(methodGetVersion, err); err != nil {
		return "", err
	}
	return out.SolanaCore, nil
}

func (c *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, c.commitment)
	if err := c.observe(methodGetBalance, err); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// Account returns [ErrAccountNotFound] if [account] does not exist.
func (c *Client) Account(ctx context.Context, account solana.PublicKey) (*rpc.Account, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		c.metrics.observeCall(methodGetAccountInfo, nil)
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err := c.observe(methodGetAccountInfo, err); err != nil {
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return out.Value, nil
}

// AccountData returns the raw data held by [account]. An existing account
// with no data yields an empty slice.
func (c *Client) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	acct, err := c.Account(ctx, account)
	if err != nil {
		return nil, err
	}
	if acct.Data == nil {
		return nil, nil
	}
	return acct.Data.GetBinary(), nil
}

// IsDeployed reports whether [account] exists and is marked executable.
func (c *Client) IsDeployed(ctx context.Context, account solana.PublicKey) (bool, error) {
	acct, err := c.Account(ctx, account)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return acct.Executable, nil
}

func (c *Client) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err := c.observe(methodGetRentExemption, err); err != nil {
		return 0, err
	}
	return lamports, nil
}

// Airdrop requests [lamports] for [account] and blocks until the airdrop
// reaches the client's commitment.
func (c *Client) Airdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, account, lamports, c.commitment)
	if err := c.observe(methodRequestAirdrop, err); err != nil {
		return solana.Signature{}, err
	}
	c.log.Info("requested airdrop",
		zap.Stringer("account", account),
		zap.Uint64("lamports", lamports),
		zap.Stringer("signature", sig),
	)
	if err := c.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	c.metrics.recordAirdrop(lamports)
	return sig, nil
}

// SendAndConfirm builds a transaction paid for and signed by [payer],
// submits it, and waits for it to reach the client's commitment.
func (c *Client) SendAndConfirm(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err := c.observe(methodGetLatestBlockhash, err); err != nil {
		return solana.Signature{}, err
	}
	payerKey := payer.PublicKey()
	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payerKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: failed to build transaction", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key == payerKey {
			return &payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: failed to sign transaction", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err := c.observe(methodSendTransaction, err); err != nil {
		return solana.Signature{}, err
	}
	c.metrics.recordTxSent()
	c.log.Info("submitted transaction",
		zap.Stringer("signature", sig),
		zap.Int("instructions", len(instructions)),
	)
	return sig, c.Confirm(ctx, sig)
}

// Confirm polls the status of [sig] until it reaches the client's
// commitment, fails on-chain, or the confirm timeout elapses.
func (c *Client) Confirm(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	wctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	err := Wait(wctx, c.pollInterval, func(ctx context.Context) (bool, error) {
		out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err := c.observe(methodGetSignatureStatuses, err); err != nil {
			return false, err
		}
		if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
			return false, nil
		}
		status := out.Value[0]
		if status.Err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrTxFailed, sig, status.Err)
		}
		return Reached(status.ConfirmationStatus, c.commitment), nil
	})
	c.metrics.recordConfirmWait(time.Since(start).Seconds())
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrConfirmTimeout, sig, c.confirmTimeout)
	}
	if err == nil {
		c.log.Debug("confirmed signature",
			zap.Stringer("signature", sig),
			zap.Duration("wait", time.Since(start)),
		)
	}
	return err
}

var (
	statusRank = map[rpc.ConfirmationStatusType]int{
		rpc.ConfirmationStatusProcessed: 1,
		rpc.ConfirmationStatusConfirmed: 2,
		rpc.ConfirmationStatusFinalized: 3,
	}
	commitmentRank = map[rpc.CommitmentType]int{
		rpc.CommitmentProcessed: 1,
		rpc.CommitmentConfirmed: 2,
		rpc.CommitmentFinalized: 3,
	}
)

// Reached reports whether [status] satisfies [commitment].
func Reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	rank, ok := statusRank[status]
	return ok && rank >= commitmentRank[commitment]
}

// Wait invokes [check] every [interval] until it returns true, returns an
// error, or [ctx] is done.
func Wait(ctx context.Context, interval time.Duration, check func(ctx context.Context) (bool, error)) error {
	for ctx.Err() == nil {
		exit, err := check(ctx)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
	}
	return ctx.Err()
}
