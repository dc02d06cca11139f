package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/require"

	"jetlumen/go-backend/internal/domains/contracts"
)

func parseEnvelope(t *testing.T, xdr string) *txnbuild.Transaction {
	t.Helper()
	generic, err := txnbuild.TransactionFromXDR(xdr)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	return tx
}

func TestBuildTransferProducesNativePayment(t *testing.T) {
	source := keypair.MustRandom().Address()
	dest := keypair.MustRandom().Address()
	client := &fakeClient{seq: 100}
	b := NewBuilder(client, network.TestNetworkPassphrase, 0, nil)

	env, err := b.Build(context.Background(), source, Request{Mode: ModeTransfer, Recipient: dest, Amount: "5"})
	require.NoError(t, err)
	require.Equal(t, network.TestNetworkPassphrase, env.NetworkPassphrase)
	require.Len(t, env.Hash, 64)

	tx := parseEnvelope(t, env.XDR)
	require.Equal(t, int64(101), tx.SequenceNumber())
	require.Equal(t, int64(txnbuild.MinBaseFee), tx.BaseFee())
	require.Equal(t, source, tx.SourceAccount().AccountID)
	bounds := tx.Timebounds()
	now := time.Now().Unix()
	require.Zero(t, bounds.MinTime)
	require.InDelta(t, now+TxTimeoutSeconds, bounds.MaxTime, 5)

	ops := tx.Operations()
	require.Len(t, ops, 1)
	payment, ok := ops[0].(*txnbuild.Payment)
	require.True(t, ok)
	require.Equal(t, dest, payment.Destination)
	require.Equal(t, "5.0000000", payment.Amount)
	require.True(t, payment.Asset.IsNative())

	hash, err := tx.HashHex(network.TestNetworkPassphrase)
	require.NoError(t, err)
	require.Equal(t, env.Hash, hash)
}

func TestBuildTimeLockAnnotatesHomeDomain(t *testing.T) {
	b := NewBuilder(&fakeClient{seq: 1}, network.TestNetworkPassphrase, 200, nil)
	env, err := b.Build(context.Background(), keypair.MustRandom().Address(), Request{Mode: ModeTimeLock, Amount: "1", UnlockTime: 1_700_000_000_000})
	require.NoError(t, err)

	tx := parseEnvelope(t, env.XDR)
	require.Equal(t, int64(200), tx.BaseFee())
	ops := tx.Operations()
	require.Len(t, ops, 1)
	setOpts, ok := ops[0].(*txnbuild.SetOptions)
	require.True(t, ok)
	require.NotNil(t, setOpts.HomeDomain)
	require.Equal(t, TimeLockDomain, *setOpts.HomeDomain)
}

func TestBuildSwapAddsSignerAndData(t *testing.T) {
	counterparty := keypair.MustRandom().Address()
	b := NewBuilder(&fakeClient{seq: 1}, network.TestNetworkPassphrase, 0, nil)
	req := Request{Mode: "SWAP", Counterparty: counterparty, AmountFrom: "1", AmountTo: "2", Expiration: 1_700_000_000_000}

	env, err := b.Build(context.Background(), keypair.MustRandom().Address(), req)
	require.NoError(t, err)

	ops := parseEnvelope(t, env.XDR).Operations()
	require.Len(t, ops, 2)
	setOpts, ok := ops[0].(*txnbuild.SetOptions)
	require.True(t, ok)
	require.NotNil(t, setOpts.Signer)
	require.Equal(t, counterparty, setOpts.Signer.Address)
	require.Equal(t, txnbuild.Threshold(1), setOpts.Signer.Weight)
	data, ok := ops[1].(*txnbuild.ManageData)
	require.True(t, ok)
	require.Equal(t, SwapDataKey, data.Name)
	require.Equal(t, "1:2:1700000000000", string(data.Value))
}

func TestBuildAccountLoadFailureStopsEarly(t *testing.T) {
	b := NewBuilder(&fakeClient{seqErr: errors.New("404 not found")}, network.TestNetworkPassphrase, 0, nil)
	_, err := b.Build(context.Background(), keypair.MustRandom().Address(), Request{Mode: ModeTransfer})
	require.ErrorIs(t, err, contracts.ErrAccountLoadFailed)
	require.Equal(t, contracts.ErrorCategoryLedger, contracts.ErrorCategory(err))
}

func TestBuildRejectionsAreBuildFailures(t *testing.T) {
	b := NewBuilder(&fakeClient{seq: 1}, network.TestNetworkPassphrase, 0, nil)
	source := keypair.MustRandom().Address()

	_, err := b.Build(context.Background(), source, Request{Mode: ModeTransfer, Recipient: "GB...", Amount: "1"})
	require.ErrorIs(t, err, contracts.ErrBuildFailed)

	long := Request{Mode: ModeSwap, Counterparty: keypair.MustRandom().Address(), AmountFrom: strings.Repeat("9", 40), AmountTo: strings.Repeat("9", 40)}
	_, err = b.Build(context.Background(), source, long)
	require.ErrorIs(t, err, contracts.ErrBuildFailed)
}

func TestBuildUnknownModeDoesNotTouchLedger(t *testing.T) {
	client := &fakeClient{seq: 1}
	b := NewBuilder(client, network.TestNetworkPassphrase, 0, nil)
	_, err := b.Build(context.Background(), keypair.MustRandom().Address(), Request{Mode: "stake"})
	require.ErrorIs(t, err, contracts.ErrInvalidOperation)
	require.Zero(t, client.seqLookups)
}
