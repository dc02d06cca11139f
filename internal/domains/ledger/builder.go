package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stellar/go/txnbuild"

	"jetlumen/go-backend/internal/domains/contracts"
)

const (
	TxTimeoutSeconds = 30
	TimeLockDomain   = "jetlumen.timelock"
	SwapDataKey      = "swap"
)

type Builder struct {
	client     Client
	passphrase string
	baseFee    int64
	logger     *slog.Logger
}

func NewBuilder(client Client, passphrase string, baseFee int64, logger *slog.Logger) *Builder {
	if baseFee < txnbuild.MinBaseFee {
		baseFee = txnbuild.MinBaseFee
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		client:     client,
		passphrase: passphrase,
		baseFee:    baseFee,
		logger:     logger.With("component", "ledger.builder"),
	}
}

// Build loads the source sequence and produces an unsigned envelope for req.
func (b *Builder) Build(ctx context.Context, source string, req Request) (Envelope, error) {
	req = req.Normalized()
	if err := req.ValidateMode(); err != nil {
		return Envelope{}, err
	}
	seq, err := b.client.SequenceNumber(ctx, source)
	if err != nil {
		return Envelope{}, ledgerError(fmt.Errorf("%w: %s: %w", contracts.ErrAccountLoadFailed, source, err))
	}

	ops := Operations(req)
	account := txnbuild.NewSimpleAccount(source, seq)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              b.baseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(TxTimeoutSeconds),
		},
	})
	if err != nil {
		return Envelope{}, ledgerError(fmt.Errorf("%w: %w", contracts.ErrBuildFailed, err))
	}
	xdr, err := tx.Base64()
	if err != nil {
		return Envelope{}, ledgerError(fmt.Errorf("%w: encode: %w", contracts.ErrBuildFailed, err))
	}
	hash, err := tx.HashHex(b.passphrase)
	if err != nil {
		return Envelope{}, ledgerError(fmt.Errorf("%w: hash: %w", contracts.ErrBuildFailed, err))
	}

	b.logger.Debug("transaction built",
		"operation", "ledger.build",
		"mode", string(req.Mode),
		"source", source,
		"op_count", len(ops),
		"tx_hash", hash,
	)
	return Envelope{XDR: xdr, Hash: hash, NetworkPassphrase: b.passphrase}, nil
}

// Operations maps a request onto ledger operations. Time locks and swaps are
// recorded as account annotations only; nothing enforces them on the ledger.
func Operations(req Request) []txnbuild.Operation {
	switch req.Mode {
	case ModeTransfer:
		return []txnbuild.Operation{&txnbuild.Payment{
			Destination: req.Recipient,
			Amount:      req.Amount,
			Asset:       txnbuild.NativeAsset{},
		}}
	case ModeTimeLock:
		domain := TimeLockDomain
		return []txnbuild.Operation{&txnbuild.SetOptions{HomeDomain: &domain}}
	case ModeSwap:
		return []txnbuild.Operation{
			&txnbuild.SetOptions{Signer: &txnbuild.Signer{
				Address: req.Counterparty,
				Weight:  txnbuild.Threshold(1),
			}},
			&txnbuild.ManageData{
				Name:  SwapDataKey,
				Value: []byte(SwapAnnotation(req)),
			},
		}
	default:
		return nil
	}
}

func SwapAnnotation(req Request) string {
	return req.AmountFrom + ":" + req.AmountTo + ":" + strconv.FormatInt(req.Expiration, 10)
}

func ledgerError(err error) error {
	return contracts.WrapCategorizedError(contracts.ErrorCategoryLedger, err)
}
