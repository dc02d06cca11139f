package contract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"jetlumen/go-backend/internal/domains/contracts"
)

func TestRPCInvokerSimulatesOnHealthyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "getHealth", req.Method)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"status":"healthy"}}`))
	}))
	defer srv.Close()

	inv := NewRPCInvoker(srv.URL, srv.Client(), nil)
	res, err := inv.Invoke(context.Background(), "CABC", FunctionRecordTransfer, map[string]any{"amount": "5"})
	require.NoError(t, err)
	require.True(t, res.Simulated)
	require.Equal(t, "healthy", res.Status)
	require.Equal(t, FunctionRecordTransfer, res.Function)
	require.Equal(t, "CABC", res.ContractID)
}

func TestRPCInvokerFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"rpc error": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
		},
		"http status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"no status": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			_, err := NewRPCInvoker(srv.URL, srv.Client(), nil).Invoke(context.Background(), "CABC", FunctionCreateSwap, nil)
			require.ErrorIs(t, err, contracts.ErrContractCallFailed)
		})
	}
}

func TestRPCInvokerUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewRPCInvoker(url, nil, nil).Invoke(context.Background(), "CABC", FunctionCreateTimeLock, nil)
	require.ErrorIs(t, err, contracts.ErrContractCallFailed)
}
