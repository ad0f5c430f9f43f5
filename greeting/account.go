// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package greeting

import (
	"fmt"

	"github.com/near/borsh-go"
)

// Size is the Borsh-encoded length of an [Account].
const Size = 4

// Account is the state of a greeting account owned by the counter program.
type Account struct {
	Counter uint32
}

func (a *Account) Marshal() ([]byte, error) {
	b, err := borsh.Serialize(*a)
	if err != nil {
		return nil, err
	}
	if len(b) != Size {
		return nil, fmt.Errorf("%w: encoded %d bytes", ErrInvalidLength, len(b))
	}
	return b, nil
}

// Unmarshal decodes account data. The data must be exactly [Size] bytes.
func Unmarshal(b []byte) (*Account, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, Size, len(b))
	}
	a := new(Account)
	if err := borsh.Deserialize(a, b); err != nil {
		return nil, err
	}
	return a, nil
}
