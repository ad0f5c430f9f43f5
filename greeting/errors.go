// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package greeting

import "errors"

var ErrInvalidLength = errors.New("invalid greeting account length")
