// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cluster

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTxFailed        = errors.New("tx failed on-chain")
	ErrConfirmTimeout  = errors.New("timed out waiting for confirmation")
)
