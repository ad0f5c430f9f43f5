// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import "errors"

var (
	ErrCredential     = errors.New("failed to acquire payer keypair")
	ErrConnection     = errors.New("failed to connect to cluster")
	ErrFunding        = errors.New("failed to fund payer")
	ErrMissingAccount = errors.New("cannot find the incorrect account")
	ErrTransaction    = errors.New("failed to send transaction")
)
