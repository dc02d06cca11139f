package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/composition/daemon"
	"jetlumen/go-backend/internal/composition/daemonserver"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC and REST listen address (optional)")
	dataDir := flag.String("data-dir", "", "Directory for state, session and keystore (optional)")
	rpcToken := flag.String("rpc-token", "", "RPC token for Authorization/X-JetLumen-RPC-Token (optional)")
	logLevel := flag.String("log-level", "", "debug | info | warn | error")
	flag.Parse()
	if *showVersion {
		fmt.Printf("jetlumen-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	cfg, err := appconfig.LoadFromPath(*configPath)
	if err != nil {
		log.Fatalf("jetlumen-daemon config: %v", err)
	}
	if v := strings.TrimSpace(*rpcAddr); v != "" {
		cfg.RPCAddr = v
	}
	if v := strings.TrimSpace(*dataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(*logLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("jetlumen-daemon config: %v", err)
	}
	if *rpcToken != "" {
		_ = os.Setenv("JETLUMEN_RPC_TOKEN", *rpcToken)
	}

	logger := daemon.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := daemonserver.NewRPCServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("jetlumen-daemon failed to initialize: %v", err)
	}

	logger.Info("jetlumen-daemon starting", "version", version, "rpc_addr", cfg.RPCAddr)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("jetlumen-daemon failed: %v", err)
	}
	logger.Info("jetlumen-daemon stopped")
}
