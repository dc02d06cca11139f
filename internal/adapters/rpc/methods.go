package rpc

import (
	"context"
	"encoding/json"
	"sort"

	"jetlumen/go-backend/internal/domains/ledger"
)

type rpcHandler func(ctx context.Context, params json.RawMessage) (any, *rpcError)

// bind decodes params with decode and hands them to call. Decode failures
// answer invalid params without reaching the service.
func bind[P any](decode func(json.RawMessage) (P, error), call func(context.Context, P) (any, error)) rpcHandler {
	return func(ctx context.Context, raw json.RawMessage) (any, *rpcError) {
		params, err := decode(raw)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		result, err := call(ctx, params)
		if err != nil {
			return nil, rpcServiceError(err)
		}
		return result, nil
	}
}

func (s *Server) methodTable() map[string]rpcHandler {
	svc := s.service
	return map[string]rpcHandler{
		"health_check": bind(decodeNoParams, func(context.Context, struct{}) (any, error) {
			return map[string]string{"status": "ok"}, nil
		}),
		"rpc.version": bind(decodeNoParams, func(context.Context, struct{}) (any, error) {
			return rpcVersionInfo(s.methodNames()), nil
		}),

		"wallet.status": bind(decodeNoParams, func(ctx context.Context, _ struct{}) (any, error) {
			return svc.WalletStatus(ctx), nil
		}),
		"wallet.connect": bind(decodeNoParams, func(ctx context.Context, _ struct{}) (any, error) {
			return svc.ConnectWallet(ctx)
		}),
		"wallet.disconnect": bind(decodeNoParams, func(ctx context.Context, _ struct{}) (any, error) {
			return svc.DisconnectWallet(ctx)
		}),
		"wallet.network": bind(decodeNoParams, func(ctx context.Context, _ struct{}) (any, error) {
			return svc.WalletNetwork(ctx)
		}),

		"keystore.create": bind(decodeOneString, func(_ context.Context, password string) (any, error) {
			return svc.CreateKeystore(password)
		}),
		"keystore.import": bind(decodeTwoStrings, func(_ context.Context, p [2]string) (any, error) {
			return svc.ImportKeystore(p[0], p[1])
		}),
		"keystore.unlock": bind(decodeOneString, func(_ context.Context, password string) (any, error) {
			return svc.UnlockKeystore(password)
		}),
		"keystore.lock": bind(decodeNoParams, func(context.Context, struct{}) (any, error) {
			if err := svc.LockKeystore(); err != nil {
				return nil, err
			}
			return map[string]bool{"locked": true}, nil
		}),

		"action.submit": bind(decodeActionParams, func(ctx context.Context, req ledger.Request) (any, error) {
			return svc.SubmitAction(ctx, req)
		}),
		"state.get": bind(decodeNoParams, func(ctx context.Context, _ struct{}) (any, error) {
			return svc.GetState(ctx)
		}),

		"ledger.transaction": bind(decodeOneString, func(ctx context.Context, hash string) (any, error) {
			return svc.LedgerTransaction(ctx, hash)
		}),
		"ledger.operations": bind(decodeOneString, func(ctx context.Context, hash string) (any, error) {
			return svc.LedgerOperations(ctx, hash)
		}),
	}
}

func (s *Server) methodNames() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) dispatchRPC(ctx context.Context, method string, params json.RawMessage) (any, *rpcError) {
	handler, ok := s.methods[method]
	if !ok {
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}
	return handler(ctx, params)
}
