package ports

import (
	"context"

	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/domains/workflow"
	"jetlumen/go-backend/internal/platform/notify"
)

// WalletAPI is a transport-neutral wallet connection contract.
type WalletAPI interface {
	WalletStatus(ctx context.Context) workflow.Status
	ConnectWallet(ctx context.Context) (workflow.Status, error)
	DisconnectWallet(ctx context.Context) (workflow.Status, error)
	WalletNetwork(ctx context.Context) (wallet.NetworkDetails, error)
}

// KeystoreAPI manages the software wallet when it is the configured extension.
type KeystoreAPI interface {
	CreateKeystore(password string) (KeystoreCreated, error)
	ImportKeystore(mnemonic, password string) (KeystoreAccount, error)
	UnlockKeystore(password string) (KeystoreAccount, error)
	LockKeystore() error
}

type ActionAPI interface {
	SubmitAction(ctx context.Context, req ledger.Request) (workflow.ActionResult, error)
}

type StateAPI interface {
	GetState(ctx context.Context) (mirror.State, error)
	RecordTransfer(ctx context.Context, sender, recipient, amount string) (mirror.State, error)
}

type LedgerAPI interface {
	LedgerTransaction(ctx context.Context, hash string) (ledger.TransactionRecord, error)
	LedgerOperations(ctx context.Context, hash string) ([]ledger.OperationRecord, error)
}

type DaemonService interface {
	WalletAPI
	KeystoreAPI
	ActionAPI
	StateAPI
	LedgerAPI

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SubscribeNotifications(cursor int64) ([]notify.Event, <-chan notify.Event, func())
}

type KeystoreAccount struct {
	Address string `json:"address"`
}

// KeystoreCreated is returned once; the mnemonic is never readable again.
type KeystoreCreated struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}
