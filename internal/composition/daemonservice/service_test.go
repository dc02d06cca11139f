package daemonservice

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/require"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/session"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/domains/wallet/keystore"
	"jetlumen/go-backend/internal/domains/workflow"
)

type horizonStub struct {
	mu        sync.Mutex
	submitted []string
}

func (h *horizonStub) SequenceNumber(context.Context, string) (int64, error) {
	return 100, nil
}

func (h *horizonStub) SubmitTransactionXDR(_ context.Context, signedXDR string) (ledger.SubmissionResult, error) {
	h.mu.Lock()
	h.submitted = append(h.submitted, signedXDR)
	h.mu.Unlock()
	parsed, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		return ledger.SubmissionResult{}, err
	}
	tx, ok := parsed.Transaction()
	if !ok {
		return ledger.SubmissionResult{}, errors.New("not a regular transaction")
	}
	hash, err := tx.HashHex(network.TestNetworkPassphrase)
	if err != nil {
		return ledger.SubmissionResult{}, err
	}
	return ledger.SubmissionResult{Hash: hash, Ledger: 7, Successful: true, FeeCharged: 100}, nil
}

func (h *horizonStub) Transaction(context.Context, string) (ledger.TransactionRecord, error) {
	return ledger.TransactionRecord{Hash: "h", Successful: true}, nil
}

func (h *horizonStub) Operations(context.Context, string) ([]ledger.OperationRecord, error) {
	return []ledger.OperationRecord{}, nil
}

func testConfig() appconfig.Config {
	cfg := appconfig.Default()
	cfg.Ledger.NetworkPassphrase = network.TestNetworkPassphrase
	return cfg
}

func newKeystoreService(t *testing.T) (*Service, *keystore.Keystore, *horizonStub) {
	t.Helper()
	dir := t.TempDir()
	store, err := mirror.OpenFileStore(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	ks := keystore.New(filepath.Join(dir, "wallet", keystore.FileName), wallet.NetworkDetails{
		Network:           "TESTNET",
		NetworkPassphrase: network.TestNetworkPassphrase,
	}, nil)
	stub := &horizonStub{}
	svc := newServiceWithOptions(Options{
		Config:       testConfig(),
		State:        store,
		Ledger:       stub,
		Extension:    ks,
		Keystore:     ks,
		AddressStore: session.NewFileAddressStore(filepath.Join(dir, "session.json")),
	})
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc, ks, stub
}

func TestServiceTransferEndToEnd(t *testing.T) {
	svc, _, stub := newKeystoreService(t)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	created, err := svc.CreateKeystore("correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, created.Mnemonic)

	status, err := svc.ConnectWallet(ctx)
	require.NoError(t, err)
	require.True(t, status.Connected)
	require.Equal(t, created.Address, status.Address)

	recipient := keypair.MustRandom().Address()
	result, err := svc.SubmitAction(ctx, ledger.Request{Mode: ledger.ModeTransfer, Recipient: recipient, Amount: "1.5"})
	require.NoError(t, err)
	require.Equal(t, workflow.RouteLedger, result.Route)
	require.NotNil(t, result.Transaction)
	require.Len(t, stub.submitted, 1)

	state, err := svc.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, mirror.State{Total: "1.5", LastRecipient: recipient}, state)

	replay, _, cancel := svc.SubscribeNotifications(0)
	defer cancel()
	var methods []string
	for _, evt := range replay {
		methods = append(methods, evt.Method)
	}
	require.Contains(t, methods, workflow.EventStateUpdated)
	require.Contains(t, methods, workflow.EventActionCompleted)
}

func TestServiceLockedKeystoreFailsSigning(t *testing.T) {
	svc, _, stub := newKeystoreService(t)
	ctx := context.Background()

	_, err := svc.CreateKeystore("pw")
	require.NoError(t, err)
	_, err = svc.ConnectWallet(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.LockKeystore())

	_, err = svc.SubmitAction(ctx, ledger.Request{Mode: ledger.ModeTransfer, Recipient: keypair.MustRandom().Address(), Amount: "1"})
	require.ErrorIs(t, err, contracts.ErrSigningFailed)
	require.Empty(t, stub.submitted)

	state, err := svc.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, mirror.Initial(), state)
}

func TestServiceWithoutKeystore(t *testing.T) {
	store, err := mirror.OpenFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	svc := newServiceWithOptions(Options{Config: testConfig(), State: store, Ledger: &horizonStub{}})
	defer svc.Stop(context.Background())

	_, err = svc.CreateKeystore("pw")
	require.ErrorIs(t, err, contracts.ErrWalletUnavailable)
	require.ErrorIs(t, svc.LockKeystore(), contracts.ErrWalletUnavailable)

	status := svc.WalletStatus(context.Background())
	require.False(t, status.Available)

	_, err = svc.ConnectWallet(context.Background())
	require.ErrorIs(t, err, contracts.ErrInitializationFailed)
}

func TestServiceRecordTransferAndLedgerQueries(t *testing.T) {
	svc, _, _ := newKeystoreService(t)
	ctx := context.Background()

	state, err := svc.RecordTransfer(ctx, "GSENDER", "GRECIPIENT", "2")
	require.NoError(t, err)
	require.Equal(t, "2", state.Total)

	_, err = svc.LedgerTransaction(ctx, "not-a-hash")
	require.ErrorIs(t, err, contracts.ErrLedgerQuery)
}

func TestServiceStopIsIdempotent(t *testing.T) {
	svc, _, _ := newKeystoreService(t)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))
	require.Error(t, svc.Start(ctx))
}
