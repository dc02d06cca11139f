package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"

	"jetlumen/go-backend/internal/domains/contracts"
)

// Wallet is the subset of the wallet bridge the session needs.
type Wallet interface {
	GetAddress(ctx context.Context) string
	RequestAccess(ctx context.Context) (string, error)
}

// Session caches the resolved wallet address so actions do not prompt the user
// every time. A switch of account inside the wallet is not noticed until Disconnect.
type Session struct {
	mu      sync.Mutex
	wallet  Wallet
	store   AddressStore
	address string
	logger  *slog.Logger
}

func New(wallet Wallet, store AddressStore, logger *slog.Logger) *Session {
	if store == nil {
		store = &MemoryAddressStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{wallet: wallet, store: store, logger: logger.With("component", "session")}
}

// Resolve returns the connected address, asking the wallet for access only
// when the silent lookup does not match the remembered address.
func (s *Session) Resolve(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address != "" {
		return s.address, nil
	}

	remembered, err := s.store.Load()
	if err != nil {
		s.logger.Warn("load remembered address failed", "operation", "session.resolve", "error", err.Error())
		remembered = ""
	}
	if current := s.wallet.GetAddress(ctx); current != "" && current == remembered {
		s.address = current
		s.logger.Info("session resumed", "operation", "session.resolve", "session_id", ID(current))
		return current, nil
	}

	address, err := s.wallet.RequestAccess(ctx)
	if err != nil {
		return "", contracts.WrapCategorizedError(contracts.ErrorCategoryWallet,
			fmt.Errorf("%w: %w", contracts.ErrInitializationFailed, err))
	}
	s.address = address
	if err := s.store.Save(address); err != nil {
		s.logger.Warn("remember address failed", "operation", "session.resolve", "error", err.Error())
	}
	s.logger.Info("session connected", "operation", "session.resolve", "session_id", ID(address), "address", address)
	return address, nil
}

// Disconnect forgets the cached and remembered address.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.address
	s.address = ""
	if err := s.store.Clear(); err != nil {
		return contracts.WrapCategorizedError(contracts.ErrorCategoryStorage,
			fmt.Errorf("%w: clear remembered address: %w", contracts.ErrStateStore, err))
	}
	if previous != "" {
		s.logger.Info("session disconnected", "operation", "session.disconnect", "session_id", ID(previous))
	}
	return nil
}

func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Remembered returns the persisted address, or "" when none is stored.
func (s *Session) Remembered() string {
	address, err := s.store.Load()
	if err != nil {
		return ""
	}
	return address
}

// ID is a stable, non-reversible correlation id for an address.
func ID(address string) string {
	if address == "" {
		return ""
	}
	h := blake2b.Sum256([]byte(address))
	return "ses1" + base58.Encode(h[:])
}
