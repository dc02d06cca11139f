package rpckit

import (
	"errors"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/wallet/keystore"
)

const (
	CodeInvalidParams  = -32602
	CodeInternal       = -32000
	CodeNotInitialized = -32099

	CodeWalletUnavailable    = -32010
	CodeAccessDenied         = -32011
	CodeNoAddress            = -32012
	CodeInitializationFailed = -32013
	CodeNotConnected         = -32014
	CodeSigningFailed        = -32015

	CodeAccountLoadFailed  = -32020
	CodeBuildFailed        = -32021
	CodeSubmissionFailed   = -32022
	CodeContractCallFailed = -32023
	CodeLedgerQuery        = -32024

	CodeStateStore      = -32030
	CodeVersionConflict = -32031

	CodeInvalidOperation = -32040

	CodeInvalidPassword  = -32050
	CodePasswordLocked   = -32051
	CodeInvalidMnemonic  = -32052
	CodeNoKeystore       = -32053
	CodeMissingSecret    = -32054
	CodeIdempotencyReuse = -32060
)

// Error is a transport-level RPC error that can be mapped by the caller
// to a concrete wire format (e.g. JSON-RPC error object).
type Error struct {
	Code     int
	Message  string
	Category string
}

func InvalidParams() *Error {
	return &Error{Code: CodeInvalidParams, Message: "invalid params", Category: contracts.ErrorCategoryAPI}
}

func ServiceError(code int, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Category: contracts.ErrorCategory(err)}
}

// codeTable is ordered: wrapping sentinels come before the causes they wrap.
var codeTable = []struct {
	target error
	code   int
}{
	{contracts.ErrInitializationFailed, CodeInitializationFailed},
	{contracts.ErrWalletUnavailable, CodeWalletUnavailable},
	{contracts.ErrAccessDenied, CodeAccessDenied},
	{contracts.ErrNoAddress, CodeNoAddress},
	{contracts.ErrNotConnected, CodeNotConnected},
	{contracts.ErrSigningFailed, CodeSigningFailed},
	{contracts.ErrAccountLoadFailed, CodeAccountLoadFailed},
	{contracts.ErrBuildFailed, CodeBuildFailed},
	{contracts.ErrSubmissionFailed, CodeSubmissionFailed},
	{contracts.ErrContractCallFailed, CodeContractCallFailed},
	{contracts.ErrLedgerQuery, CodeLedgerQuery},
	{contracts.ErrVersionConflict, CodeVersionConflict},
	{contracts.ErrStateStore, CodeStateStore},
	{contracts.ErrInvalidOperation, CodeInvalidOperation},
	{keystore.ErrInvalidPassword, CodeInvalidPassword},
	{keystore.ErrPasswordLocked, CodePasswordLocked},
	{keystore.ErrInvalidMnemonic, CodeInvalidMnemonic},
	{keystore.ErrNoKeystore, CodeNoKeystore},
	{keystore.ErrPasswordRequired, CodeMissingSecret},
	{keystore.ErrMnemonicRequired, CodeMissingSecret},
}

// FromError maps a service error to its stable code; unknown errors are internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.target) {
			return ServiceError(entry.code, err)
		}
	}
	return ServiceError(CodeInternal, err)
}
