// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/onsi/ginkgo/v2/formatter"
	"go.uber.org/zap"

	"github.com/solana-baremetal/counter-cli/cluster"
	"github.com/solana-baremetal/counter-cli/config"
	"github.com/solana-baremetal/counter-cli/consts"
	"github.com/solana-baremetal/counter-cli/greeting"
	"github.com/solana-baremetal/counter-cli/keys"
	"github.com/solana-baremetal/counter-cli/program"
	"github.com/solana-baremetal/counter-cli/utils"
)

// Dialer opens the JSON-RPC transport for a cluster URL.
type Dialer func(uri string) cluster.RPC

type Option func(*Counter)

func WithDialer(d Dialer) Option {
	return func(c *Counter) { c.dial = d }
}

// WithOutput sets where progress text is written.
func WithOutput(w io.Writer) Option {
	return func(c *Counter) { c.out = w }
}

func WithLogger(log logging.Logger) Option {
	return func(c *Counter) { c.log = log }
}

func WithMetrics(m *cluster.Metrics) Option {
	return func(c *Counter) { c.metrics = m }
}

// WithDemoAccount replaces the address the demonstration writes to.
func WithDemoAccount(account solana.PublicKey) Option {
	return func(c *Counter) { c.demo = account }
}

// WithClusterOptions forwards options to the cluster client.
func WithClusterOptions(opts ...cluster.Option) Option {
	return func(c *Counter) { c.clusterOpts = append(c.clusterOpts, opts...) }
}

// Counter runs the counter example against a single cluster.
type Counter struct {
	config    *config.Config
	artifacts program.Artifacts

	dial        Dialer
	out         io.Writer
	log         logging.Logger
	metrics     *cluster.Metrics
	demo        solana.PublicKey
	clusterOpts []cluster.Option
}

func New(cfg *config.Config, artifacts program.Artifacts, opts ...Option) *Counter {
	c := &Counter{
		config:    cfg,
		artifacts: artifacts,
		dial:      cluster.Dial,
		out:       formatter.ColorableStdOut,
		log:       logging.NoLog{},
		demo:      solana.MustPublicKeyFromBase58(consts.IncorrectAccount),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Counter) printf(format string, args ...interface{}) {
	utils.Fprintf(c.out, format, args...)
}

// FundingThreshold is the balance the payer must hold before the run: enough
// to create a rent-exempt greeting account and pay for a batch of signatures.
func FundingThreshold(rentExemption uint64) uint64 {
	return rentExemption + consts.LamportsPerSignature*consts.FeeSignatureBudget
}

// Run executes the example. A program that is not deployed is reported
// through [Result.Status], not as an error.
func (c *Counter) Run(ctx context.Context) (*Result, error) {
	c.printf("{{bold}}Let's increment counter for an account!{{/}}\n")

	payer, err := c.payer()
	if err != nil {
		return nil, err
	}

	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.ensureFunds(ctx, client, payer.PublicKey()); err != nil {
		return nil, err
	}

	start, err := c.balance(ctx, client, payer.PublicKey())
	if err != nil {
		return nil, err
	}

	programID, err := c.artifacts.ID()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Payer:     payer.PublicKey(),
		ProgramID: programID,
		Start:     start,
		End:       start,
	}

	deployed, err := client.IsDeployed(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !deployed {
		c.printf("\n{{red}}Program %s not deployed!{{/}}\n\n", c.artifacts.SharedObjectPath())
		if c.artifacts.Built() {
			c.printf("{{yellow}}deploy it with `solana program deploy %s`{{/}}\n", c.artifacts.SharedObjectPath())
		} else {
			c.printf("{{yellow}}build it with `cargo build-sbf` and deploy it with `solana program deploy %s`{{/}}\n", c.artifacts.SharedObjectPath())
		}
		c.log.Info("program not deployed",
			zap.Stringer("programID", programID),
			zap.String("path", c.artifacts.SharedObjectPath()),
		)
		res.Status = StatusNotDeployed
		return res, nil
	}

	if err := c.demonstrate(ctx, client, payer, programID, res); err != nil {
		return nil, err
	}

	end, err := c.balance(ctx, client, payer.PublicKey())
	if err != nil {
		return nil, err
	}
	res.End = end
	res.Cost = CostBetween(start, end)
	c.printf("\nIt cost:\n\t%s SOL\n\t%d Lamports\nto perform the call\n", res.Cost, res.Cost.Lamports)
	c.log.Info("run completed",
		zap.Int64("costLamports", res.Cost.Lamports),
	)
	res.Status = StatusCompleted
	return res, nil
}

func (c *Counter) payer() (solana.PrivateKey, error) {
	priv, created, err := keys.LoadOrGenerate(c.config.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCredential, c.config.KeypairPath, err)
	}
	if created {
		c.printf("{{yellow}}created new keypair:{{/}} %s {{yellow}}at{{/}} %s\n", priv.PublicKey(), c.config.KeypairPath)
		c.log.Info("generated payer keypair",
			zap.String("path", c.config.KeypairPath),
			zap.Stringer("payer", priv.PublicKey()),
		)
	}
	return priv, nil
}

func (c *Counter) connect(ctx context.Context) (*cluster.Client, error) {
	commitment, err := c.config.CommitmentType()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	opts := append([]cluster.Option{
		cluster.WithLogger(c.log),
		cluster.WithMetrics(c.metrics),
	}, c.clusterOpts...)
	client := cluster.NewWithRPC(c.dial(c.config.JSONRPCURL), c.config.JSONRPCURL, commitment, opts...)

	version, err := client.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, client.URI(), err)
	}
	c.printf("Connection to cluster established: {{cyan}}%s{{/}} version: %s\n", client.URI(), version)
	c.log.Info("connected",
		zap.String("uri", client.URI()),
		zap.String("version", version),
		zap.String("commitment", string(commitment)),
	)
	return client, nil
}

func (c *Counter) ensureFunds(ctx context.Context, client *cluster.Client, payer solana.PublicKey) error {
	rent, err := client.MinimumBalanceForRentExemption(ctx, greeting.Size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFunding, err)
	}
	threshold := FundingThreshold(rent)

	lamports, err := client.Balance(ctx, payer)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFunding, err)
	}
	if lamports < threshold {
		need := threshold - lamports
		c.log.Info("requesting airdrop",
			zap.Stringer("payer", payer),
			zap.Uint64("balance", lamports),
			zap.Uint64("threshold", threshold),
		)
		if _, err := client.Airdrop(ctx, payer, need); err != nil {
			return fmt.Errorf("%w: airdrop of %d lamports: %w", ErrFunding, need, err)
		}
		lamports, err = client.Balance(ctx, payer)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFunding, err)
		}
	}
	c.printf("Using account {{cyan}}%s{{/}} containing {{green}}%s{{/}} %s to pay for fees\n", payer, utils.FormatBalance(lamports), consts.Symbol)
	return nil
}

func (*Counter) balance(ctx context.Context, client *cluster.Client, payer solana.PublicKey) (Balance, error) {
	lamports, err := client.Balance(ctx, payer)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Lamports: lamports}, nil
}
