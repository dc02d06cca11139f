package daemonservice

import (
	"log/slog"
	"strings"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/domains/contract"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/session"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/domains/workflow"
	"jetlumen/go-backend/internal/platform/metrics"
	"jetlumen/go-backend/internal/platform/notify"
	"jetlumen/go-backend/internal/platform/privacylog"
)

// Options carries the adapters a Service is assembled from. Extension,
// Keystore and Invoker may be nil.
type Options struct {
	Config       appconfig.Config
	State        mirror.Store
	Ledger       ledger.Client
	Extension    wallet.Extension
	Keystore     KeystoreManager
	Invoker      contract.Invoker
	AddressStore session.AddressStore
	Metrics      *metrics.Registry
	Logger       *slog.Logger
}

func newServiceWithOptions(opts Options) *Service {
	opts = ensureServiceOptions(opts)
	cfg := opts.Config
	logger := opts.Logger

	bridge := wallet.NewBridge(opts.Extension, cfg.Ledger.NetworkPassphrase, logger)
	sess := session.New(bridge, opts.AddressStore, logger)
	mirrorSvc := mirror.NewService(opts.State, logger)
	hub := notify.NewHub(loadTuning(logger).NotifyBacklog)

	svc := &Service{
		keystore: opts.Keystore,
		reader:   ledger.NewReader(opts.Ledger),
		notifier: hub,
		metrics:  opts.Metrics,
		logger:   logger,
		closers:  []func() error{mirrorSvc.Close},
	}
	svc.workflow = workflow.NewService(workflow.Deps{
		Identity:  sess,
		Wallet:    bridge,
		Builder:   ledger.NewBuilder(opts.Ledger, cfg.Ledger.NetworkPassphrase, cfg.Ledger.BaseFee, logger),
		Submitter: ledger.NewSubmitter(opts.Ledger, cfg.Ledger.NetworkPassphrase, logger),
		Mirror:    mirrorSvc,
		Invoker:   opts.Invoker,
		Route: workflow.ContractRoute{
			ID:     strings.TrimSpace(cfg.Contract.ID),
			RPCURL: strings.TrimSpace(cfg.Contract.RPCURL),
		},
		Notifier: hub,
		Metrics:  opts.Metrics,
		Logger:   logger,
	})
	return svc
}

func ensureServiceOptions(opts Options) Options {
	opts.Logger = privacylog.Wrap(opts.Logger)
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	return opts
}
