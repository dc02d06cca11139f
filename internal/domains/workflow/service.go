package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jetlumen/go-backend/internal/domains/contract"
	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/session"
	"jetlumen/go-backend/internal/domains/wallet"
)

type Deps struct {
	Identity  Identity
	Wallet    Wallet
	Builder   TxBuilder
	Submitter TxSubmitter
	Mirror    StateMirror
	Invoker   contract.Invoker
	Route     ContractRoute
	Notifier  Notifier
	Metrics   Metrics
	Logger    *slog.Logger
}

// Service runs one user action at a time through identity, build, sign,
// submit and the local state mirror.
type Service struct {
	actionMu  sync.Mutex
	identity  Identity
	wallet    Wallet
	builder   TxBuilder
	submitter TxSubmitter
	mirror    StateMirror
	invoker   contract.Invoker
	route     ContractRoute
	notifier  Notifier
	metrics   Metrics
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		identity:  deps.Identity,
		wallet:    deps.Wallet,
		builder:   deps.Builder,
		submitter: deps.Submitter,
		mirror:    deps.Mirror,
		invoker:   deps.Invoker,
		route:     deps.Route,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "workflow"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) ContractRouted() bool {
	return s.invoker != nil &&
		strings.TrimSpace(s.route.ID) != "" &&
		strings.TrimSpace(s.route.RPCURL) != ""
}

// Submit performs one action and returns its result or the first failure.
// A failure after the ledger accepted the transaction still returns the
// partial result alongside the error.
func (s *Service) Submit(ctx context.Context, req ledger.Request) (ActionResult, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	started := s.now()
	req = req.Normalized()
	result := ActionResult{ID: s.newID(), Mode: req.Mode}
	log := s.logger.With("correlation_id", result.ID, "mode", string(req.Mode))

	address, err := s.identity.Resolve(ctx)
	if err != nil {
		return result, s.fail(log, result, "", started, err)
	}
	result.Address = address

	if err := req.ValidateMode(); err != nil {
		return result, s.fail(log, result, "", started, contracts.WrapCategorizedError(contracts.ErrorCategoryAPI, err))
	}

	if s.ContractRouted() {
		result.Route = RouteContract
		function, args := ContractCall(address, req)
		res, err := s.invoker.Invoke(ctx, s.route.ID, function, args)
		if err != nil {
			return result, s.fail(log, result, RouteContract, started, err)
		}
		result.Contract = &res
		result.Message = successMessage(req.Mode, "")
		result.State = s.displayState(ctx, log)
		return result, s.succeed(log, result, started)
	}

	result.Route = RouteLedger
	env, err := s.builder.Build(ctx, address, req)
	if err != nil {
		return result, s.fail(log, result, RouteLedger, started, err)
	}
	signed, err := s.wallet.Sign(ctx, env.XDR, address)
	if err != nil {
		return result, s.fail(log, result, RouteLedger, started, err)
	}
	submitted, err := s.submitter.Submit(ctx, signed)
	if err != nil {
		return result, s.fail(log, result, RouteLedger, started, err)
	}
	result.Transaction = &submitted
	result.Message = successMessage(req.Mode, submitted.Hash)

	if req.Mode == ledger.ModeTransfer {
		mirrored, err := s.mirror.MirrorTransfer(ctx, req.Recipient, req.Amount)
		if err != nil {
			return result, s.fail(log, result, RouteLedger, started, err)
		}
		s.publish(EventStateUpdated, mirrored)
	}
	result.State = s.displayState(ctx, log)
	return result, s.succeed(log, result, started)
}

// RecordTransfer mirrors a transfer reported by a client without a ledger round trip.
func (s *Service) RecordTransfer(ctx context.Context, sender, recipient, amount string) (mirror.State, error) {
	state, err := s.mirror.MirrorTransfer(ctx, recipient, amount)
	if err != nil {
		s.recordError(err)
		return mirror.State{}, err
	}
	s.logger.Info("transfer recorded",
		"operation", "workflow.record_transfer",
		"sender", sender,
		"recipient", recipient,
	)
	s.publish(EventStateUpdated, state)
	return state, nil
}

func (s *Service) Connect(ctx context.Context) (Status, error) {
	address, err := s.identity.Resolve(ctx)
	if err != nil {
		s.recordError(err)
		return s.Status(ctx), err
	}
	s.publish(EventWalletConnected, map[string]string{"sessionId": session.ID(address)})
	return s.Status(ctx), nil
}

func (s *Service) Disconnect(ctx context.Context) (Status, error) {
	if err := s.identity.Disconnect(); err != nil {
		s.recordError(err)
		return s.Status(ctx), err
	}
	s.publish(EventWalletDisconnected, nil)
	return s.Status(ctx), nil
}

func (s *Service) Status(ctx context.Context) Status {
	address := s.identity.Current()
	return Status{
		Available:      s.wallet.IsAvailable(ctx),
		Connected:      address != "",
		Address:        address,
		SessionID:      session.ID(address),
		Remembered:     s.identity.Remembered(),
		ContractRouted: s.ContractRouted(),
	}
}

func (s *Service) Network(ctx context.Context) (wallet.NetworkDetails, error) {
	details, err := s.wallet.NetworkDetails(ctx)
	if err != nil {
		s.recordError(err)
	}
	return details, err
}

func (s *Service) State(ctx context.Context) (mirror.State, error) {
	state, err := s.mirror.Read(ctx)
	if err != nil {
		s.recordError(err)
	}
	return state, err
}

// ContractCall names the contract function and arguments for a request.
func ContractCall(sender string, req ledger.Request) (string, map[string]any) {
	switch req.Mode {
	case ledger.ModeTimeLock:
		return contract.FunctionCreateTimeLock, map[string]any{
			"owner":       sender,
			"amount":      req.Amount,
			"unlock_time": req.UnlockTime,
		}
	case ledger.ModeSwap:
		return contract.FunctionCreateSwap, map[string]any{
			"initiator":    sender,
			"counterparty": req.Counterparty,
			"amount_from":  req.AmountFrom,
			"amount_to":    req.AmountTo,
			"expiration":   req.Expiration,
		}
	default:
		return contract.FunctionRecordTransfer, map[string]any{
			"sender":    sender,
			"recipient": req.Recipient,
			"amount":    req.Amount,
		}
	}
}

func successMessage(mode ledger.Mode, hash string) string {
	switch mode {
	case ledger.ModeTimeLock:
		return "Time lock created successfully"
	case ledger.ModeSwap:
		if hash == "" {
			hash = "Unknown"
		}
		return "Swap created successfully. ID: " + hash
	default:
		return "Transfer completed successfully"
	}
}

// displayState refreshes the mirrored state for the caller; a failed read does
// not fail an action that already succeeded.
func (s *Service) displayState(ctx context.Context, log *slog.Logger) *mirror.State {
	state, err := s.mirror.Read(ctx)
	if err != nil {
		log.Warn("state refresh failed", "operation", "workflow.refresh_state", "error", err.Error())
		return nil
	}
	return &state
}

func (s *Service) succeed(log *slog.Logger, result ActionResult, started time.Time) error {
	elapsed := s.now().Sub(started)
	if s.metrics != nil {
		s.metrics.ObserveAction(string(result.Mode), result.Route, "ok", elapsed)
	}
	log.Info("action completed",
		"operation", "workflow.submit",
		"route", result.Route,
		"address", result.Address,
		"duration_ms", elapsed.Milliseconds(),
	)
	s.publish(EventActionCompleted, result)
	return nil
}

func (s *Service) fail(log *slog.Logger, result ActionResult, route string, started time.Time, err error) error {
	category := contracts.ErrorCategory(err)
	elapsed := s.now().Sub(started)
	if s.metrics != nil {
		s.metrics.ObserveAction(string(result.Mode), routeLabel(route), "error", elapsed)
		s.metrics.RecordError(category)
	}
	log.Warn("action failed",
		"operation", "workflow.submit",
		"route", routeLabel(route),
		"category", category,
		"error", err.Error(),
	)
	s.publish(EventActionFailed, ActionFailure{
		ID:       result.ID,
		Mode:     result.Mode,
		Category: category,
		Error:    err.Error(),
	})
	return err
}

func (s *Service) recordError(err error) {
	if s.metrics != nil && err != nil {
		s.metrics.RecordError(contracts.ErrorCategory(err))
	}
}

func (s *Service) publish(method string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(method, payload)
}

func routeLabel(route string) string {
	if route == "" {
		return "none"
	}
	return route
}
