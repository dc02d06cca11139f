package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stellar/go/network"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/domains/contract"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/ledger/horizon"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/domains/wallet/keystore"
)

const (
	DefaultDataDir  = "data"
	upstreamTimeout = 20 * time.Second
)

// Infrastructure is the set of concrete adapters the daemon service runs on.
// Keystore is nil unless the keystore extension is configured, and Invoker is
// nil unless contract routing is.
type Infrastructure struct {
	Storage   StorageBundle
	Ledger    ledger.Client
	Extension wallet.Extension
	Keystore  *keystore.Keystore
	Invoker   contract.Invoker
	Network   wallet.NetworkDetails
}

func (i Infrastructure) Close() error {
	return i.Storage.Close()
}

func ResolveDataDir(dataDir string) string {
	resolved := strings.TrimSpace(dataDir)
	if resolved == "" {
		return DefaultDataDir
	}
	return resolved
}

// BuildInfrastructure prepares the data dir and opens every adapter named by cfg.
func BuildInfrastructure(ctx context.Context, cfg appconfig.Config, logger *slog.Logger) (Infrastructure, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dataDir := ResolveDataDir(cfg.DataDir)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return Infrastructure{}, fmt.Errorf("create data dir: %w", err)
	}
	bundle, err := BuildStorageBundle(ctx, dataDir, cfg.State)
	if err != nil {
		return Infrastructure{}, err
	}

	httpClient := &http.Client{Timeout: upstreamTimeout}
	details := NetworkDetails(cfg)
	infra := Infrastructure{
		Storage: bundle,
		Ledger:  horizon.New(cfg.Ledger.HorizonURL, httpClient),
		Network: details,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Wallet.Extension), appconfig.ExtensionKeystore) {
		ks := keystore.New(bundle.KeystorePath, details, logger)
		infra.Keystore = ks
		infra.Extension = ks
	}
	if cfg.Contract.Routed() {
		infra.Invoker = contract.NewRPCInvoker(cfg.Contract.RPCURL, httpClient, logger)
	}
	logger.Info("infrastructure ready",
		"component", "composition",
		"operation", "bootstrap",
		"data_dir", dataDir,
		"state_backend", cfg.State.Backend,
		"wallet_extension", cfg.Wallet.Extension,
		"contract_routed", cfg.Contract.Routed(),
	)
	return infra, nil
}

// NetworkDetails describes the configured network the way a wallet reports it.
func NetworkDetails(cfg appconfig.Config) wallet.NetworkDetails {
	return wallet.NetworkDetails{
		Network:           networkName(cfg.Ledger.NetworkPassphrase),
		NetworkURL:        cfg.Ledger.HorizonURL,
		NetworkPassphrase: cfg.Ledger.NetworkPassphrase,
		SorobanRPCURL:     cfg.Contract.RPCURL,
	}
}

func networkName(passphrase string) string {
	switch passphrase {
	case network.TestNetworkPassphrase:
		return "TESTNET"
	case network.PublicNetworkPassphrase:
		return "PUBLIC"
	default:
		return "STANDALONE"
	}
}
