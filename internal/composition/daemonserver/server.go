package daemonserver

import (
	"context"
	"log/slog"

	"jetlumen/go-backend/internal/adapters/rpc"
	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/composition/daemon/servicefactory"
)

// NewRPCServer wires the daemon service and the RPC transport.
func NewRPCServer(ctx context.Context, cfg appconfig.Config, logger *slog.Logger) (*rpc.Server, error) {
	svc, err := servicefactory.BuildDaemonService(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return rpc.NewServerWithService(cfg.RPCAddr, svc, svc.Metrics()), nil
}
