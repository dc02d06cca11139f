package contracts

import (
	"errors"
	"strings"
)

var (
	ErrWalletUnavailable    = errors.New("wallet is unavailable outside a host context")
	ErrAccessDenied         = errors.New("wallet access denied")
	ErrNoAddress            = errors.New("no address returned from wallet")
	ErrInitializationFailed = errors.New("wallet initialization failed")
	ErrNotConnected         = errors.New("wallet is not connected")
	ErrAccountLoadFailed    = errors.New("account load failed")
	ErrBuildFailed          = errors.New("transaction build failed")
	ErrSigningFailed        = errors.New("transaction signing failed")
	ErrSubmissionFailed     = errors.New("transaction submission failed")
	ErrStateStore           = errors.New("state store error")
	ErrVersionConflict      = errors.New("state version conflict")
	ErrInvalidOperation     = errors.New("invalid operation mode")
	ErrContractCallFailed   = errors.New("contract call failed")
	ErrLedgerQuery          = errors.New("ledger query failed")
)

const (
	ErrorCategoryAPI     = "api"
	ErrorCategoryWallet  = "wallet"
	ErrorCategoryLedger  = "ledger"
	ErrorCategoryStorage = "storage"
)

type CategorizedError struct {
	Category string
	Err      error
}

func (e *CategorizedError) Error() string {
	return e.Err.Error()
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

func normalizeErrorCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case ErrorCategoryWallet:
		return ErrorCategoryWallet
	case ErrorCategoryLedger:
		return ErrorCategoryLedger
	case ErrorCategoryStorage:
		return ErrorCategoryStorage
	default:
		return ErrorCategoryAPI
	}
}

func WrapCategorizedError(category string, err error) error {
	if err == nil {
		return nil
	}
	var existing *CategorizedError
	if errors.As(err, &existing) {
		return &CategorizedError{
			Category: normalizeErrorCategory(existing.Category),
			Err:      existing.Err,
		}
	}
	return &CategorizedError{
		Category: normalizeErrorCategory(category),
		Err:      err,
	}
}

// ErrorCategory prefers an explicit category and otherwise classifies by sentinel.
func ErrorCategory(err error) string {
	var classified *CategorizedError
	if errors.As(err, &classified) {
		return normalizeErrorCategory(classified.Category)
	}
	switch {
	case errors.Is(err, ErrWalletUnavailable),
		errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrNoAddress),
		errors.Is(err, ErrInitializationFailed),
		errors.Is(err, ErrNotConnected),
		errors.Is(err, ErrSigningFailed):
		return ErrorCategoryWallet
	case errors.Is(err, ErrAccountLoadFailed),
		errors.Is(err, ErrBuildFailed),
		errors.Is(err, ErrSubmissionFailed),
		errors.Is(err, ErrContractCallFailed),
		errors.Is(err, ErrLedgerQuery):
		return ErrorCategoryLedger
	case errors.Is(err, ErrStateStore), errors.Is(err, ErrVersionConflict):
		return ErrorCategoryStorage
	default:
		return ErrorCategoryAPI
	}
}
