package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stellar/go/txnbuild"

	"jetlumen/go-backend/internal/domains/contracts"
)

type Submitter struct {
	client     Client
	passphrase string
	logger     *slog.Logger
}

func NewSubmitter(client Client, passphrase string, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		client:     client,
		passphrase: passphrase,
		logger:     logger.With("component", "ledger.submitter"),
	}
}

// Submit relays a signed envelope once. There are no retries.
func (s *Submitter) Submit(ctx context.Context, signed SignedEnvelope) (SubmissionResult, error) {
	hash, err := s.hashSigned(signed.XDR)
	if err != nil {
		return SubmissionResult{}, err
	}
	res, err := s.client.SubmitTransactionXDR(ctx, signed.XDR)
	if err != nil {
		s.logger.Warn("transaction rejected",
			"operation", "ledger.submit",
			"tx_hash", hash,
			"error", err.Error(),
		)
		return SubmissionResult{}, ledgerError(fmt.Errorf("%w: %w", contracts.ErrSubmissionFailed, err))
	}
	if res.Hash != "" && !strings.EqualFold(res.Hash, hash) {
		return SubmissionResult{}, ledgerError(fmt.Errorf("%w: ledger reported hash %s, expected %s", contracts.ErrSubmissionFailed, res.Hash, hash))
	}
	if res.Hash == "" {
		res.Hash = hash
	}
	s.logger.Info("transaction submitted",
		"operation", "ledger.submit",
		"tx_hash", res.Hash,
		"ledger", res.Ledger,
		"successful", res.Successful,
	)
	return res, nil
}

func (s *Submitter) hashSigned(signedXDR string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(strings.TrimSpace(signedXDR))
	if err != nil {
		return "", ledgerError(fmt.Errorf("%w: parse envelope: %w", contracts.ErrSubmissionFailed, err))
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", ledgerError(fmt.Errorf("%w: envelope is not a regular transaction", contracts.ErrSubmissionFailed))
	}
	hash, err := tx.HashHex(s.passphrase)
	if err != nil {
		return "", ledgerError(fmt.Errorf("%w: hash: %w", contracts.ErrSubmissionFailed, err))
	}
	return hash, nil
}
