package servicefactory

import (
	"context"
	"log/slog"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/composition/daemonservice"
	"jetlumen/go-backend/internal/platform/metrics"
)

// BuildDaemonService composes a daemon-ready service from a validated config.
func BuildDaemonService(ctx context.Context, cfg appconfig.Config, logger *slog.Logger) (*daemonservice.Service, error) {
	return daemonservice.NewServiceForDaemon(ctx, cfg, metrics.NewRegistry(), logger)
}
