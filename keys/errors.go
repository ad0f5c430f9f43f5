// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import "errors"

var ErrInvalidKeypair = errors.New("invalid keypair")
