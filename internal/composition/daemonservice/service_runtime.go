package daemonservice

import (
	"context"
	"errors"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/platform/metrics"
	"jetlumen/go-backend/internal/platform/notify"
)

// Start reports the wallet and session state the daemon comes up with. The
// daemon runs no background workers, so Start is idempotent and cheap.
func (s *Service) Start(ctx context.Context) error {
	s.startStopMu.Lock()
	defer s.startStopMu.Unlock()
	if s.running {
		return nil
	}
	if s.stopped {
		return errors.New("daemon service was stopped")
	}
	s.running = true
	status := s.workflow.Status(ctx)
	s.opLog("start", "").Info("daemon service started",
		"wallet_available", status.Available,
		"address", status.Remembered,
		"contract_routed", status.ContractRouted,
	)
	return nil
}

// Stop closes the state store. It is safe to call more than once.
func (s *Service) Stop(context.Context) error {
	s.startStopMu.Lock()
	defer s.startStopMu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	s.running = false
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return s.fail(contracts.ErrorCategoryStorage, "stop", "", err)
	}
	s.opLog("stop", "").Info("daemon service stopped")
	return nil
}

func (s *Service) SubscribeNotifications(cursor int64) ([]notify.Event, <-chan notify.Event, func()) {
	return s.notifier.Subscribe(cursor)
}

// Metrics is the registry the service records into, for the /metrics route.
func (s *Service) Metrics() *metrics.Registry {
	return s.metrics
}
