package daemonservice

import (
	"context"
	"log/slog"
	"sync"

	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/workflow"
	"jetlumen/go-backend/internal/platform/metrics"
	"jetlumen/go-backend/internal/platform/notify"
)

// KeystoreManager is the software wallet surface exposed over RPC.
type KeystoreManager interface {
	Create(password string) (mnemonic, address string, err error)
	Import(mnemonic, password string) (string, error)
	Unlock(password string) (string, error)
	Lock()
}

type ledgerReader interface {
	Transaction(ctx context.Context, hash string) (ledger.TransactionRecord, error)
	Operations(ctx context.Context, hash string) ([]ledger.OperationRecord, error)
}

type Service struct {
	workflow *workflow.Service
	keystore KeystoreManager
	reader   ledgerReader
	notifier *notify.Hub
	metrics  *metrics.Registry
	logger   *slog.Logger
	closers  []func() error

	startStopMu sync.Mutex
	running     bool
	stopped     bool
}
