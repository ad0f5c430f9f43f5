// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errUnavailable = errors.New("unavailable")

func newTestClient(t *testing.T, opts ...Option) (*Client, *MockRPC, *Metrics) {
	ctrl := gomock.NewController(t)
	r := NewMockRPC(ctrl)
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	opts = append([]Option{WithMetrics(m), WithPollInterval(time.Millisecond)}, opts...)
	return NewWithRPC(r, "http://127.0.0.1:8899", rpc.CommitmentConfirmed, opts...), r, m
}

func status(s rpc.ConfirmationStatusType, txErr interface{}) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: s, Err: txErr}},
	}
}

func TestVersion(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)

	r.EXPECT().GetVersion(gomock.Any()).Return(&rpc.GetVersionResult{SolanaCore: "1.18.26"}, nil)
	v, err := c.Version(context.Background())
	require.NoError(err)
	require.Equal("1.18.26", v)

	r.EXPECT().GetVersion(gomock.Any()).Return(nil, errUnavailable)
	_, err = c.Version(context.Background())
	require.ErrorIs(err, errUnavailable)

	require.InDelta(2, testutil.ToFloat64(m.calls.WithLabelValues(methodGetVersion)), 0)
	require.InDelta(1, testutil.ToFloat64(m.errors.WithLabelValues(methodGetVersion)), 0)
}

func TestAccountNotFound(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)
	key := solana.NewWallet().PublicKey()

	r.EXPECT().GetAccountInfoWithOpts(gomock.Any(), key, gomock.Any()).Return(nil, rpc.ErrNotFound).Times(3)

	_, err := c.AccountData(context.Background(), key)
	require.ErrorIs(err, ErrAccountNotFound)

	deployed, err := c.IsDeployed(context.Background(), key)
	require.NoError(err)
	require.False(deployed)

	_, err = c.Account(context.Background(), key)
	require.ErrorIs(err, ErrAccountNotFound)

	// a missing account is an answer, not a failed call
	require.InDelta(0, testutil.ToFloat64(m.errors.WithLabelValues(methodGetAccountInfo)), 0)
}

func TestIsDeployed(t *testing.T) {
	tests := []struct {
		name       string
		executable bool
		err        error
		want       bool
		wantErr    error
	}{
		{name: "executable", executable: true, want: true},
		{name: "data account", executable: false, want: false},
		{name: "rpc failure", err: errUnavailable, wantErr: errUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			c, r, _ := newTestClient(t)
			key := solana.NewWallet().PublicKey()

			var out *rpc.GetAccountInfoResult
			if tt.err == nil {
				out = &rpc.GetAccountInfoResult{Value: &rpc.Account{
					Executable: tt.executable,
					Data:       rpc.DataBytesOrJSONFromBytes(nil),
				}}
			}
			r.EXPECT().GetAccountInfoWithOpts(gomock.Any(), key, gomock.Any()).Return(out, tt.err)

			deployed, err := c.IsDeployed(context.Background(), key)
			require.ErrorIs(err, tt.wantErr)
			require.Equal(tt.want, deployed)
		})
	}
}

func TestAccountData(t *testing.T) {
	require := require.New(t)
	c, r, _ := newTestClient(t)
	key := solana.NewWallet().PublicKey()

	r.EXPECT().GetAccountInfoWithOpts(gomock.Any(), key, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
			require.Equal(solana.EncodingBase64, opts.Encoding)
			require.Equal(rpc.CommitmentConfirmed, opts.Commitment)
			return &rpc.GetAccountInfoResult{Value: &rpc.Account{
				Data: rpc.DataBytesOrJSONFromBytes([]byte{7, 0, 0, 0}),
			}}, nil
		},
	)
	data, err := c.AccountData(context.Background(), key)
	require.NoError(err)
	require.Equal([]byte{7, 0, 0, 0}, data)
}

func TestAirdropConfirms(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)
	key := solana.NewWallet().PublicKey()
	sig := solana.Signature{1}

	gomock.InOrder(
		r.EXPECT().RequestAirdrop(gomock.Any(), key, uint64(1_000), rpc.CommitmentConfirmed).Return(sig, nil),
		r.EXPECT().GetSignatureStatuses(gomock.Any(), true, sig).Return(&rpc.GetSignatureStatusesResult{
			Value: []*rpc.SignatureStatusesResult{nil},
		}, nil),
		r.EXPECT().GetSignatureStatuses(gomock.Any(), true, sig).Return(status(rpc.ConfirmationStatusProcessed, nil), nil),
		r.EXPECT().GetSignatureStatuses(gomock.Any(), true, sig).Return(status(rpc.ConfirmationStatusConfirmed, nil), nil),
	)

	got, err := c.Airdrop(context.Background(), key, 1_000)
	require.NoError(err)
	require.Equal(sig, got)
	require.InDelta(1_000, testutil.ToFloat64(m.airdropped), 0)
	require.InDelta(3, testutil.ToFloat64(m.calls.WithLabelValues(methodGetSignatureStatuses)), 0)
}

func TestAirdropRequestFails(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)
	key := solana.NewWallet().PublicKey()

	r.EXPECT().RequestAirdrop(gomock.Any(), key, uint64(1_000), gomock.Any()).Return(solana.Signature{}, errUnavailable)
	_, err := c.Airdrop(context.Background(), key, 1_000)
	require.ErrorIs(err, errUnavailable)
	require.InDelta(0, testutil.ToFloat64(m.airdropped), 0)
}

func TestConfirmTxFailed(t *testing.T) {
	require := require.New(t)
	c, r, _ := newTestClient(t)
	sig := solana.Signature{2}

	r.EXPECT().GetSignatureStatuses(gomock.Any(), true, sig).Return(
		status(rpc.ConfirmationStatusProcessed, map[string]interface{}{"InstructionError": "Custom"}),
		nil,
	)
	err := c.Confirm(context.Background(), sig)
	require.ErrorIs(err, ErrTxFailed)
}

func TestConfirmTimeout(t *testing.T) {
	require := require.New(t)
	c, r, _ := newTestClient(t, WithConfirmTimeout(20*time.Millisecond))
	sig := solana.Signature{3}

	r.EXPECT().GetSignatureStatuses(gomock.Any(), true, sig).Return(
		status(rpc.ConfirmationStatusProcessed, nil), nil,
	).AnyTimes()
	err := c.Confirm(context.Background(), sig)
	require.ErrorIs(err, ErrConfirmTimeout)
}

func TestConfirmCanceled(t *testing.T) {
	require := require.New(t)
	c, _, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Confirm(ctx, solana.Signature{4})
	require.ErrorIs(err, context.Canceled)
	require.NotErrorIs(err, ErrConfirmTimeout)
}

func TestSendAndConfirm(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	programID := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()
	ix := solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: target, IsWritable: true},
	}, []byte{})

	var sent *solana.Transaction
	r.EXPECT().GetLatestBlockhash(gomock.Any(), rpc.CommitmentConfirmed).Return(&rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}},
	}, nil)
	r.EXPECT().SendTransactionWithOpts(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
			require.Equal(rpc.CommitmentConfirmed, opts.PreflightCommitment)
			sent = tx
			return tx.Signatures[0], nil
		},
	)
	r.EXPECT().GetSignatureStatuses(gomock.Any(), true, gomock.Any()).Return(status(rpc.ConfirmationStatusFinalized, nil), nil)

	sig, err := c.SendAndConfirm(context.Background(), payer, ix)
	require.NoError(err)
	require.NotNil(sent)
	require.Equal(sent.Signatures[0], sig)
	require.Equal(payer.PublicKey(), sent.Message.AccountKeys[0])
	require.Equal(solana.Hash{9}, sent.Message.RecentBlockhash)
	require.NoError(sent.VerifySignatures())
	require.InDelta(1, testutil.ToFloat64(m.txsSent), 0)
}

func TestSendAndConfirmBlockhashFails(t *testing.T) {
	require := require.New(t)
	c, r, m := newTestClient(t)
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(err)

	r.EXPECT().GetLatestBlockhash(gomock.Any(), gomock.Any()).Return(nil, errUnavailable)
	_, err = c.SendAndConfirm(context.Background(), payer)
	require.ErrorIs(err, errUnavailable)
	require.InDelta(0, testutil.ToFloat64(m.txsSent), 0)
}

func TestReached(t *testing.T) {
	require := require.New(t)

	require.True(Reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentProcessed))
	require.False(Reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	require.True(Reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed))
	require.False(Reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized))
	require.True(Reached(rpc.ConfirmationStatusFinalized, rpc.CommitmentFinalized))
	require.False(Reached("", rpc.CommitmentProcessed))
}

func TestWait(t *testing.T) {
	require := require.New(t)

	calls := 0
	err := Wait(context.Background(), time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(err)
	require.Equal(3, calls)

	err = Wait(context.Background(), time.Millisecond, func(context.Context) (bool, error) {
		return false, errUnavailable
	})
	require.ErrorIs(err, errUnavailable)
}

func TestNilMetrics(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	r := NewMockRPC(ctrl)
	c := NewWithRPC(r, "", rpc.CommitmentConfirmed)

	r.EXPECT().GetBalance(gomock.Any(), gomock.Any(), rpc.CommitmentConfirmed).Return(&rpc.GetBalanceResult{Value: 42}, nil)
	bal, err := c.Balance(context.Background(), solana.PublicKey{})
	require.NoError(err)
	require.Equal(uint64(42), bal)
}

func TestURINormalized(t *testing.T) {
	require := require.New(t)

	r := Dial("http://127.0.0.1:8899/")
	require.IsType(&rpc.Client{}, r)

	c := NewWithRPC(r, "http://127.0.0.1:8899/", rpc.CommitmentFinalized)
	require.Equal("http://127.0.0.1:8899", c.URI())
	require.Equal(rpc.CommitmentFinalized, c.Commitment())
}
