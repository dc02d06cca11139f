package rpc

import (
	"jetlumen/go-backend/internal/domains/rpckit"
)

func toRPCError(e *rpckit.Error) *rpcError {
	if e == nil {
		return nil
	}
	out := &rpcError{Code: e.Code, Message: e.Message}
	if e.Category != "" {
		out.Data = &rpcErrorData{Category: e.Category}
	}
	return out
}

func rpcInvalidParams() *rpcError {
	return toRPCError(rpckit.InvalidParams())
}

func rpcServiceError(err error) *rpcError {
	return toRPCError(rpckit.FromError(err))
}
