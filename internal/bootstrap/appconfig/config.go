package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stellar/go/network"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHorizonURL = "https://horizon-testnet.stellar.org"
	DefaultRPCAddr    = "127.0.0.1:8787"
	DefaultBaseFee    = int64(100)

	StateBackendFile     = "file"
	StateBackendBadger   = "badger"
	StateBackendPostgres = "postgres"

	ExtensionKeystore = "keystore"
	ExtensionNone     = "none"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	RPCAddr  string
	DataDir  string
	LogLevel string
	Ledger   LedgerConfig
	Contract ContractConfig
	State    StateConfig
	Wallet   WalletConfig
}

type LedgerConfig struct {
	HorizonURL        string
	NetworkPassphrase string
	BaseFee           int64
}

type ContractConfig struct {
	ID     string
	RPCURL string
}

// Routed reports whether actions go to the contract seam instead of the ledger.
func (c ContractConfig) Routed() bool {
	return strings.TrimSpace(c.ID) != "" && strings.TrimSpace(c.RPCURL) != ""
}

type StateConfig struct {
	Backend string
	Path    string
	DSN     string
}

type WalletConfig struct {
	Extension string
}

// FileConfig mirrors configs/config.yaml; zero values leave defaults untouched.
type FileConfig struct {
	RPC struct {
		Addr string `yaml:"addr"`
	} `yaml:"rpc"`
	DataDir  string `yaml:"dataDir"`
	LogLevel string `yaml:"logLevel"`
	Ledger   struct {
		HorizonURL        string `yaml:"horizonURL"`
		NetworkPassphrase string `yaml:"networkPassphrase"`
		BaseFee           int64  `yaml:"baseFee"`
	} `yaml:"ledger"`
	Contract struct {
		ID     string `yaml:"id"`
		RPCURL string `yaml:"rpcURL"`
	} `yaml:"contract"`
	State struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		DSN     string `yaml:"dsn"`
	} `yaml:"state"`
	Wallet struct {
		Extension string `yaml:"extension"`
	} `yaml:"wallet"`
}

func Default() Config {
	return Config{
		RPCAddr:  DefaultRPCAddr,
		LogLevel: "info",
		Ledger: LedgerConfig{
			HorizonURL:        DefaultHorizonURL,
			NetworkPassphrase: network.TestNetworkPassphrase,
			BaseFee:           DefaultBaseFee,
		},
		State:  StateConfig{Backend: StateBackendFile},
		Wallet: WalletConfig{Extension: ExtensionKeystore},
	}
}

// LoadFromPath reads configPath, or the first default location that exists,
// then applies JETLUMEN_* environment overrides. A missing default file is not
// an error; an explicit path that cannot be read or parsed is.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := []string{"configs/config.yaml", "go-backend/configs/config.yaml"}
	explicit := strings.TrimSpace(configPath) != ""
	if explicit {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
			continue
		}
		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Merge(dst *Config, src FileConfig) {
	setString(&dst.RPCAddr, src.RPC.Addr)
	setString(&dst.DataDir, src.DataDir)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.Ledger.HorizonURL, src.Ledger.HorizonURL)
	setString(&dst.Ledger.NetworkPassphrase, src.Ledger.NetworkPassphrase)
	if src.Ledger.BaseFee != 0 {
		dst.Ledger.BaseFee = src.Ledger.BaseFee
	}
	setString(&dst.Contract.ID, src.Contract.ID)
	setString(&dst.Contract.RPCURL, src.Contract.RPCURL)
	setString(&dst.State.Backend, src.State.Backend)
	setString(&dst.State.Path, src.State.Path)
	setString(&dst.State.DSN, src.State.DSN)
	setString(&dst.Wallet.Extension, src.Wallet.Extension)
}

func ApplyEnvOverrides(cfg *Config) {
	setString(&cfg.RPCAddr, envString("JETLUMEN_RPC_ADDR"))
	setString(&cfg.DataDir, envString("JETLUMEN_DATA_DIR"))
	setString(&cfg.LogLevel, envString("JETLUMEN_LOG_LEVEL"))
	setString(&cfg.Ledger.HorizonURL, envString("JETLUMEN_HORIZON_URL"))
	setString(&cfg.Ledger.NetworkPassphrase, envString("JETLUMEN_NETWORK_PASSPHRASE"))
	if raw := envString("JETLUMEN_BASE_FEE"); raw != "" {
		if fee, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.Ledger.BaseFee = fee
		}
	}
	setString(&cfg.Contract.ID, envString("JETLUMEN_CONTRACT_ID"))
	setString(&cfg.Contract.RPCURL, envString("JETLUMEN_SOROBAN_RPC"))
	setString(&cfg.State.Backend, envString("JETLUMEN_STATE_BACKEND"))
	setString(&cfg.State.Path, envString("JETLUMEN_STATE_PATH"))
	setString(&cfg.State.DSN, envString("JETLUMEN_STATE_DSN"))
	setString(&cfg.Wallet.Extension, envString("JETLUMEN_WALLET_EXTENSION"))
}

func (c Config) Validate() error {
	switch c.State.Backend {
	case StateBackendFile, StateBackendBadger:
	case StateBackendPostgres:
		if strings.TrimSpace(c.State.DSN) == "" {
			return fmt.Errorf("%w: state.dsn is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown state.backend %q", ErrInvalidConfig, c.State.Backend)
	}
	switch c.Wallet.Extension {
	case ExtensionKeystore, ExtensionNone:
	default:
		return fmt.Errorf("%w: unknown wallet.extension %q", ErrInvalidConfig, c.Wallet.Extension)
	}
	if c.Ledger.BaseFee < DefaultBaseFee {
		return fmt.Errorf("%w: ledger.baseFee must be at least %d stroops", ErrInvalidConfig, DefaultBaseFee)
	}
	if strings.TrimSpace(c.Ledger.HorizonURL) == "" || strings.TrimSpace(c.Ledger.NetworkPassphrase) == "" {
		return fmt.Errorf("%w: ledger.horizonURL and ledger.networkPassphrase are required", ErrInvalidConfig)
	}
	return nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
