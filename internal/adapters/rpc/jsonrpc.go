package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"jetlumen/go-backend/internal/domains/rpckit"
)

type rpcRequest struct {
	JSONRPC    string          `json:"jsonrpc"`
	ID         json.RawMessage `json:"id"`
	Method     string          `json:"method"`
	Params     json.RawMessage `json:"params"`
	APIVersion *int            `json:"api_version,omitempty"`
}

type rpcErrorData struct {
	Category string `json:"category"`
}

type rpcError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *rpcErrorData `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

const (
	maxRPCBodyBytes int64 = 256 << 10

	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601

	unknownMethodLabel = "unknown"
)

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: rpckit.CodeNotInitialized, Message: "service is not initialized"},
		})
		return
	}
	req, ok := decodeRPCRequest(w, r)
	if !ok {
		return
	}
	token := s.verifiedToken(r)
	_, write := writeMethods[req.Method]
	if !s.throttle.admit(w, clientKey(r, token), write) {
		return
	}

	var cacheKey string
	if _, ok := idempotentMethods[req.Method]; ok {
		cacheKey = idempotencyKey(r.Header.Get(rpcIdempotencyHeader), token)
	}
	if cacheKey == "" {
		writeRPC(w, s.execute(r.Context(), req))
		return
	}

	fingerprint := requestFingerprint(req)
	cached, outcome := s.idempotency.claim(r.Context(), cacheKey, fingerprint)
	switch outcome {
	case lookupConflict:
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: rpckit.CodeIdempotencyReuse, Message: "idempotency key reused with a different request"},
		})
		return
	case lookupHit:
		w.Header().Set(rpcReplayHeader, "true")
		cached.ID = req.ID
		writeRPC(w, cached)
		return
	case lookupCanceled:
		return
	}

	settled := false
	defer func() {
		if !settled {
			s.idempotency.abandon(cacheKey)
		}
	}()
	resp := s.execute(r.Context(), req)
	s.idempotency.store(cacheKey, fingerprint, resp)
	settled = true
	writeRPC(w, resp)
}

// decodeRPCRequest writes the protocol error itself and reports false when
// the body is not one well-formed request for a supported api version.
func decodeRPCRequest(w http.ResponseWriter, r *http.Request) (rpcRequest, bool) {
	var req rpcRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRPCBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return req, false
		}
		writeRPC(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
		return req, false
	}
	if dec.Decode(&struct{}{}) != io.EOF || req.JSONRPC != "2.0" || req.Method == "" {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"}})
		return req, false
	}
	if rpcErr := validateRPCAPIVersion(req.APIVersion); rpcErr != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		return req, false
	}
	return req, true
}

// execute dispatches one request and records its outcome.
func (s *Server) execute(ctx context.Context, req rpcRequest) rpcResponse {
	log := s.logger.With("operation", req.Method, "correlation_id", uuid.NewString())
	log.Info("rpc request", "rpc_id", string(req.ID))
	started := time.Now()

	result, rpcErr := s.dispatchRPC(ctx, req.Method, req.Params)
	latency := time.Since(started).Milliseconds()
	if rpcErr != nil {
		category := ""
		if rpcErr.Data != nil {
			category = rpcErr.Data.Category
		}
		log.Error("rpc failed", "rpc_code", rpcErr.Code, "category", category, "latency_ms", latency)
	} else {
		log.Info("rpc response", "latency_ms", latency)
	}
	s.metrics.RecordRPC(s.methodLabel(req.Method), rpcErr == nil)
	return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
}

// methodLabel keeps client-chosen method names out of metric labels.
func (s *Server) methodLabel(method string) string {
	if _, ok := s.methods[method]; ok {
		return method
	}
	return unknownMethodLabel
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
