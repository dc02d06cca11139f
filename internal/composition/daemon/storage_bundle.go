package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/wallet/keystore"
)

const (
	stateFileName   = "state.json"
	stateBadgerDir  = "state.badger"
	sessionFileName = "session.json"
	keystoreDirName = "wallet"
)

// StorageBundle holds everything the daemon persists under its data dir.
type StorageBundle struct {
	DataDir      string
	State        mirror.Store
	SessionPath  string
	KeystorePath string
}

func (b StorageBundle) Close() error {
	if b.State == nil {
		return nil
	}
	return b.State.Close()
}

func BuildStorageBundle(ctx context.Context, dataDir string, cfg appconfig.StateConfig) (StorageBundle, error) {
	store, err := OpenStateStore(ctx, dataDir, cfg)
	if err != nil {
		return StorageBundle{}, err
	}
	return StorageBundle{
		DataDir:      dataDir,
		State:        store,
		SessionPath:  filepath.Join(dataDir, sessionFileName),
		KeystorePath: filepath.Join(dataDir, keystoreDirName, keystore.FileName),
	}, nil
}

// OpenStateStore opens the configured mirror backend. Relative paths resolve
// against dataDir; a blank path picks the backend's default location.
func OpenStateStore(ctx context.Context, dataDir string, cfg appconfig.StateConfig) (mirror.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", appconfig.StateBackendFile:
		return mirror.OpenFileStore(statePath(dataDir, cfg.Path, stateFileName))
	case appconfig.StateBackendBadger:
		return mirror.OpenBadgerStore(statePath(dataDir, cfg.Path, stateBadgerDir))
	case appconfig.StateBackendPostgres:
		return mirror.OpenPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unknown state backend %q", contracts.ErrStateStore, cfg.Backend)
	}
}

func statePath(dataDir, configured, fallback string) string {
	p := strings.TrimSpace(configured)
	if p == "" {
		return filepath.Join(dataDir, fallback)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
