package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jetlumen/go-backend/internal/domains/contracts"
)

const maxRESTBodyBytes int64 = 16 << 10

type transferBody struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type transferResponse struct {
	Success       bool   `json:"success"`
	Total         string `json:"total"`
	LastRecipient string `json:"lastRecipient"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !s.throttle.admit(w, s.callerKey(r), false) {
		return
	}
	state, err := s.service.GetState(r.Context())
	if err != nil {
		s.writeRESTError(w, "state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleTransfer records a transfer in the mirror only; the ledger is not touched.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if !s.throttle.admit(w, s.callerKey(r), true) {
		return
	}

	var body transferBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRESTBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(body.Recipient) == "" || strings.TrimSpace(body.Amount) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipient and amount are required"})
		return
	}

	state, err := s.service.RecordTransfer(r.Context(), body.Sender, body.Recipient, body.Amount)
	if err != nil {
		s.writeRESTError(w, "transfer", err)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse{
		Success:       true,
		Total:         state.Total,
		LastRecipient: state.LastRecipient,
	})
}

func (s *Server) writeRESTError(w http.ResponseWriter, operation string, err error) {
	category := contracts.ErrorCategory(err)
	s.logger.Error("rest request failed", "operation", operation, "category", category, "error", err)
	s.metrics.RecordError(category)
	status := http.StatusInternalServerError
	if errors.Is(err, contracts.ErrVersionConflict) {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
