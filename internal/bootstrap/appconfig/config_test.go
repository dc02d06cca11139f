package appconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stellar/go/network"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPathMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
ledger:
  baseFee: 200
contract:
  id: CABC
  rpcURL: https://soroban-testnet.stellar.org
state:
  backend: badger
  path: /tmp/jetlumen-state
`)
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.BaseFee != 200 {
		t.Fatalf("unexpected base fee %d", cfg.Ledger.BaseFee)
	}
	if cfg.Ledger.HorizonURL != DefaultHorizonURL || cfg.Ledger.NetworkPassphrase != network.TestNetworkPassphrase {
		t.Fatalf("expected ledger defaults to survive, got %+v", cfg.Ledger)
	}
	if cfg.State.Backend != StateBackendBadger || cfg.State.Path != "/tmp/jetlumen-state" {
		t.Fatalf("unexpected state config %+v", cfg.State)
	}
	if !cfg.Contract.Routed() {
		t.Fatal("expected contract routing with both id and rpc url")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "wallet:\n  extension: keystore\n")
	t.Setenv("JETLUMEN_WALLET_EXTENSION", "none")
	t.Setenv("JETLUMEN_BASE_FEE", "300")
	t.Setenv("JETLUMEN_CONTRACT_ID", "CXYZ")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Wallet.Extension != ExtensionNone {
		t.Fatalf("expected env extension override, got %q", cfg.Wallet.Extension)
	}
	if cfg.Ledger.BaseFee != 300 {
		t.Fatalf("expected env base fee, got %d", cfg.Ledger.BaseFee)
	}
	if cfg.Contract.Routed() {
		t.Fatal("contract id without rpc url must not route")
	}
}

func TestLoadFromPathRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown backend":   "state:\n  backend: redis\n",
		"postgres no dsn":   "state:\n  backend: postgres\n",
		"unknown extension": "wallet:\n  extension: freighter\n",
		"fee below minimum": "ledger:\n  baseFee: 10\n",
		"malformed yaml":    "ledger: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromPathMissingExplicitFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}
