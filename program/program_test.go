// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/solana-baremetal/counter-cli/keys"
)

func TestPaths(t *testing.T) {
	require := require.New(t)
	a := New(DefaultDir, DefaultName)
	require.Equal(filepath.Join("target", "deploy", "counter.so"), a.SharedObjectPath())
	require.Equal(filepath.Join("target", "deploy", "counter-keypair.json"), a.KeypairPath())
}

func TestIDMissingKeypair(t *testing.T) {
	require := require.New(t)
	a := New(t.TempDir(), DefaultName)

	_, err := a.ID()
	require.ErrorIs(err, ErrArtifactMissing)
	require.ErrorContains(err, a.KeypairPath())
	require.False(a.Built())
}

func TestID(t *testing.T) {
	require := require.New(t)
	a := New(t.TempDir(), DefaultName)

	priv, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	require.NoError(keys.Save(a.KeypairPath(), priv))
	require.NoError(os.WriteFile(a.SharedObjectPath(), []byte{0x7f, 'E', 'L', 'F'}, 0o600))

	id, err := a.ID()
	require.NoError(err)
	require.Equal(priv.PublicKey(), id)
	require.True(a.Built())
}

func TestIDCorruptKeypair(t *testing.T) {
	require := require.New(t)
	a := New(t.TempDir(), DefaultName)
	require.NoError(os.WriteFile(a.KeypairPath(), []byte("{}"), 0o600))

	_, err := a.ID()
	require.Error(err)
	require.NotErrorIs(err, ErrArtifactMissing)
}
