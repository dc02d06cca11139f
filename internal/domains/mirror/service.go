package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"jetlumen/go-backend/internal/domains/contracts"
)

const maxSwapAttempts = 3

type Service struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "mirror")}
}

func (s *Service) Read(ctx context.Context) (State, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return State{}, storeError("read state", err)
	}
	return snap.State, nil
}

// MirrorTransfer adds amount to the running total and records recipient.
// Writers in this process are serialized; writers sharing the backend from other
// processes are resolved by retrying on version conflicts.
func (s *Service) MirrorTransfer(ctx context.Context, recipient, amount string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= maxSwapAttempts; attempt++ {
		snap, err := s.store.Read(ctx)
		if err != nil {
			return State{}, storeError("read state", err)
		}
		total, err := AddDecimal(snap.State.Total, amount)
		if err != nil {
			return State{}, storeError("add amount", err)
		}
		next := State{Total: total, LastRecipient: recipient}
		written, err := s.store.CompareAndSwap(ctx, snap.Version, next)
		if err == nil {
			s.logger.Info("state updated",
				"operation", "mirror.transfer",
				"recipient", recipient,
				"version", written.Version,
			)
			return written.State, nil
		}
		if !errors.Is(err, contracts.ErrVersionConflict) {
			return State{}, storeError("write state", err)
		}
		lastErr = err
		s.logger.Warn("state version conflict",
			"operation", "mirror.transfer",
			"attempt", attempt,
			"expected_version", snap.Version,
		)
	}
	return State{}, storeError("write state", lastErr)
}

func (s *Service) Close() error {
	return s.store.Close()
}

func storeError(op string, err error) error {
	return contracts.WrapCategorizedError(
		contracts.ErrorCategoryStorage,
		fmt.Errorf("%w: %s: %w", contracts.ErrStateStore, op, err),
	)
}
