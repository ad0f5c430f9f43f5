// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-baremetal/counter-cli/keys"
)

const (
	// DefaultDir is where cargo build-sbf places the program binary and
	// the program keypair.
	DefaultDir  = "target/deploy"
	DefaultName = "counter"
)

var ErrArtifactMissing = errors.New("program keypair not found")

// Artifacts locates the build outputs of an on-chain program.
type Artifacts struct {
	Dir  string
	Name string
}

func New(dir string, name string) Artifacts {
	return Artifacts{Dir: dir, Name: name}
}

// SharedObjectPath is the path of the program binary to deploy.
func (a Artifacts) SharedObjectPath() string {
	return filepath.Join(a.Dir, a.Name+".so")
}

// KeypairPath is the path of the keypair whose public key is the program id.
// It is written by `solana program deploy`.
func (a Artifacts) KeypairPath() string {
	return filepath.Join(a.Dir, a.Name+"-keypair.json")
}

// Built reports whether the program binary exists on disk.
func (a Artifacts) Built() bool {
	_, err := os.Stat(a.SharedObjectPath())
	return err == nil
}

// ID returns the program id named by the program keypair.
func (a Artifacts) ID() (solana.PublicKey, error) {
	path := a.KeypairPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return solana.PublicKey{}, fmt.Errorf(
			"%w: failed to read program keypair at %q, program may need to be deployed with `solana program deploy %s`",
			ErrArtifactMissing,
			path,
			a.SharedObjectPath(),
		)
	}
	priv, err := keys.Load(path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: failed to read program keypair at %q", err, path)
	}
	return priv.PublicKey(), nil
}
