package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"jetlumen/go-backend/internal/domains/contracts"
)

// Reader looks up submitted transactions and their operations.
type Reader struct {
	client Client
}

func NewReader(client Client) *Reader {
	return &Reader{client: client}
}

func (r *Reader) Transaction(ctx context.Context, hash string) (TransactionRecord, error) {
	hash, err := normalizeHash(hash)
	if err != nil {
		return TransactionRecord{}, err
	}
	rec, err := r.client.Transaction(ctx, hash)
	if err != nil {
		return TransactionRecord{}, ledgerError(fmt.Errorf("%w: transaction %s: %w", contracts.ErrLedgerQuery, hash, err))
	}
	return rec, nil
}

func (r *Reader) Operations(ctx context.Context, hash string) ([]OperationRecord, error) {
	hash, err := normalizeHash(hash)
	if err != nil {
		return nil, err
	}
	ops, err := r.client.Operations(ctx, hash)
	if err != nil {
		return nil, ledgerError(fmt.Errorf("%w: operations %s: %w", contracts.ErrLedgerQuery, hash, err))
	}
	if ops == nil {
		ops = []OperationRecord{}
	}
	return ops, nil
}

func normalizeHash(hash string) (string, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	raw, err := hex.DecodeString(hash)
	if err != nil || len(raw) != 32 {
		return "", ledgerError(fmt.Errorf("%w: %q is not a transaction hash", contracts.ErrLedgerQuery, hash))
	}
	return hash, nil
}
