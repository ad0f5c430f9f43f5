// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/gagliardetto/solana-go"
)

// keygen files hold private keys and must not be group readable
const fsModeWrite = 0o600

// Load reads a keypair written by solana-keygen: a JSON array of the 64
// bytes of an ed25519 private key (seed followed by public key).
func Load(path string) (solana.PrivateKey, error) {
	priv, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(priv); err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return priv, nil
}

// Validate checks that [priv] is well formed and that its public half
// matches its seed.
func Validate(priv solana.PrivateKey) error {
	if len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(priv))
	}
	derived := ed25519.NewKeyFromSeed(priv[:ed25519.SeedSize])
	if !derived.Equal(ed25519.PrivateKey(priv)) {
		return fmt.Errorf("%w: public key does not match seed", ErrInvalidKeypair)
	}
	return nil
}

// Save writes [priv] in the solana-keygen file format.
func Save(path string, priv solana.PrivateKey) error {
	if err := Validate(priv); err != nil {
		return err
	}
	values := make([]int, len(priv))
	for i, b := range priv {
		values[i] = int(b)
	}
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), perms.ReadWriteExecute); err != nil {
		return err
	}
	return os.WriteFile(path, b, fsModeWrite)
}

// LoadOrGenerate loads the keypair at [path]. If no file exists there, a new
// keypair is generated and saved to [path]. The returned bool reports whether
// the keypair was generated.
func LoadOrGenerate(path string) (solana.PrivateKey, bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		priv, err := Load(path)
		return priv, false, err
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, err
	}

	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, false, err
	}
	if err := Save(path, priv); err != nil {
		return nil, false, err
	}
	return priv, true, nil
}
