package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jetlumen/go-backend/internal/domains/contracts"
)

const (
	FunctionRecordTransfer = "record_transfer"
	FunctionCreateTimeLock = "create_time_lock"
	FunctionCreateSwap     = "create_swap"

	maxResponseBytes = 1 << 20
)

// Invoker calls a deployed contract function.
type Invoker interface {
	Invoke(ctx context.Context, contractID, function string, args map[string]any) (Result, error)
}

type Result struct {
	ContractID string         `json:"contractId"`
	Function   string         `json:"function"`
	Args       map[string]any `json:"args,omitempty"`
	Simulated  bool           `json:"simulated"`
	Status     string         `json:"status"`
}

// RPCInvoker confirms the contract RPC endpoint is healthy and reports the
// call it would make. It does not build or submit host function invocations.
type RPCInvoker struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewRPCInvoker(endpoint string, client *http.Client, logger *slog.Logger) *RPCInvoker {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCInvoker{
		endpoint: strings.TrimSpace(endpoint),
		client:   client,
		logger:   logger.With("component", "contract.rpc"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
}

type rpcResponse struct {
	Result *struct {
		Status string `json:"status"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (i *RPCInvoker) Invoke(ctx context.Context, contractID, function string, args map[string]any) (Result, error) {
	status, err := i.health(ctx)
	if err != nil {
		return Result{}, contracts.WrapCategorizedError(contracts.ErrorCategoryLedger,
			fmt.Errorf("%w: %s: %w", contracts.ErrContractCallFailed, function, err))
	}
	i.logger.Info("contract call simulated",
		"operation", "contract.invoke",
		"contract_id", contractID,
		"function", function,
		"rpc_status", status,
	)
	return Result{
		ContractID: contractID,
		Function:   function,
		Args:       args,
		Simulated:  true,
		Status:     status,
	}, nil
}

func (i *RPCInvoker) health(ctx context.Context) (string, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "getHealth"})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := i.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rpc endpoint returned %s", resp.Status)
	}
	var decoded rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode rpc response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if decoded.Result == nil || decoded.Result.Status == "" {
		return "", fmt.Errorf("rpc response has no health status")
	}
	return decoded.Result.Status, nil
}
