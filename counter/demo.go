// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solana-baremetal/counter-cli/cluster"
	"github.com/solana-baremetal/counter-cli/greeting"
)

// demonstrate greets the demo account through [programID] if the account is
// deployed, then reads back its counter.
func (c *Counter) demonstrate(
	ctx context.Context,
	client *cluster.Client,
	payer solana.PrivateKey,
	programID solana.PublicKey,
	res *Result,
) error {
	c.printf("Program ID account: %s\n", programID)
	c.printf("Using incorrect public key: %s\n", c.demo)

	deployed, err := client.IsDeployed(ctx, c.demo)
	if err != nil {
		return err
	}
	if !deployed {
		c.printf("{{red}}Incorrect account %s not deployed!{{/}}\n", c.demo)
	} else {
		c.printf("Attempting to write to the greeting counter of an incorrect account %s\n", c.demo)
		ix := greeting.NewGreetInstruction(programID, c.demo)
		sig, err := client.SendAndConfirm(ctx, payer, ix)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransaction, err)
		}
		res.Signature = &sig
		c.log.Info("greeted account",
			zap.Stringer("account", c.demo),
			zap.Stringer("signature", sig),
		)
	}

	data, err := client.AccountData(ctx, c.demo)
	if errors.Is(err, cluster.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s", ErrMissingAccount, c.demo)
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMissingAccount, c.demo)
	}

	account, err := greeting.Unmarshal(data)
	if err != nil {
		return err
	}
	res.Counter = &account.Counter
	c.printf("%s has been greeted %d time(s)\n", c.demo, account.Counter)
	return nil
}
