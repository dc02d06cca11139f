package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jetlumen/go-backend/internal/bootstrap/appconfig"
	"jetlumen/go-backend/internal/domains/contracts/ports"
	"jetlumen/go-backend/internal/platform/metrics"
)

const (
	DefaultRPCAddr  = appconfig.DefaultRPCAddr
	shutdownTimeout = 5 * time.Second
)

// Server exposes the daemon over JSON-RPC, an SSE notification stream and
// the two REST routes the dApp uses for the state mirror.
type Server struct {
	httpServer  *http.Server
	router      *mux.Router
	service     ports.DaemonService
	metrics     *metrics.Registry
	logger      *slog.Logger
	initErr     error
	rpcToken    string
	requireRPC  bool
	throttle    *throttle
	streams     *rpcStreamLimiter
	idempotency *idempotencyCache
	methods     map[string]rpcHandler
}

// NewServerWithService resolves auth from the environment. A nil registry
// disables /metrics. Auth misconfiguration surfaces from Run.
func NewServerWithService(rpcAddr string, svc ports.DaemonService, reg *metrics.Registry) *Server {
	requireRPC := requiresRPCToken()
	rpcToken, err := resolveRPCToken()
	switch {
	case err != nil:
		return &Server{service: svc, initErr: err}
	case requireRPC && rpcToken == "":
		return &Server{
			service: svc,
			initErr: fmt.Errorf("%s is required unless %s=false or %s is test/development/local", rpcTokenEnv, requireRPCTokenEnv, envNameEnv),
		}
	}
	return newServerWithService(rpcAddr, svc, reg, rpcToken, requireRPC)
}

func newServerWithService(rpcAddr string, svc ports.DaemonService, reg *metrics.Registry, rpcToken string, requireRPC bool) *Server {
	if rpcAddr == "" {
		rpcAddr = DefaultRPCAddr
	}
	s := &Server{
		router:      mux.NewRouter(),
		service:     svc,
		metrics:     reg,
		logger:      slog.Default().With("component", "rpc"),
		rpcToken:    rpcToken,
		requireRPC:  requireRPC,
		throttle:    newThrottle(loadThrottleConfig()),
		streams:     newRPCStreamLimiter(loadRPCStreamLimitConfig()),
		idempotency: newIdempotencyCache(idempotencyTTL, idempotencyCapacity),
	}
	s.httpServer = &http.Server{
		Addr:              rpcAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if rpcToken == "" && !requireRPC {
		s.logger.Warn(rpcTokenEnv + " is not set; RPC auth disabled")
	}
	s.methods = s.methodTable()
	s.routes(reg)
	return s
}

func (s *Server) routes(reg *metrics.Registry) {
	r := s.router
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	r.Use(s.corsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/rpc", s.requireToken(http.HandlerFunc(s.handleRPC))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/rpc/stream", s.requireToken(http.HandlerFunc(s.handleRPCStream))).Methods(http.MethodGet, http.MethodOptions)
	if reg != nil {
		r.Handle("/metrics", reg.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/transfer", s.requireToken(http.HandlerFunc(s.handleTransfer))).Methods(http.MethodPost, http.MethodOptions)
}

// Run starts the service, serves until ctx is cancelled and then stops both.
func (s *Server) Run(ctx context.Context) error {
	if s.initErr != nil {
		if s.service != nil {
			_ = s.service.Stop(context.Background())
		}
		return s.initErr
	}
	if ctx.Err() != nil {
		return s.service.Stop(context.Background())
	}
	if err := s.service.Start(ctx); err != nil {
		return err
	}

	served := make(chan error, 1)
	go func() {
		s.logger.Info("rpc server listening", "operation", "run", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			served <- err
			return
		}
		served <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr := s.httpServer.Shutdown(shutdownCtx)
		stopErr := s.service.Stop(shutdownCtx)
		return errors.Join(shutdownErr, stopErr, <-served)
	case err := <-served:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(err, s.service.Stop(shutdownCtx))
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
