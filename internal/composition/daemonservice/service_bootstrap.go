package daemonservice

import (
	"context"
	"log/slog"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	daemoncomposition "jetlumen/go-backend/internal/composition/daemon"
	"jetlumen/go-backend/internal/domains/session"
	"jetlumen/go-backend/internal/platform/metrics"
)

// NewServiceForDaemon opens the configured infrastructure and assembles the
// daemon service on top of it. The caller owns Stop, which closes the stores.
func NewServiceForDaemon(ctx context.Context, cfg appconfig.Config, reg *metrics.Registry, logger *slog.Logger) (*Service, error) {
	infra, err := daemoncomposition.BuildInfrastructure(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := Options{
		Config:       cfg,
		State:        infra.Storage.State,
		Ledger:       infra.Ledger,
		Extension:    infra.Extension,
		Invoker:      infra.Invoker,
		AddressStore: session.NewFileAddressStore(infra.Storage.SessionPath),
		Metrics:      reg,
		Logger:       logger,
	}
	if infra.Keystore != nil {
		opts.Keystore = infra.Keystore
	}
	return newServiceWithOptions(opts), nil
}
