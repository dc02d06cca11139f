package ledger

import (
	"context"
	"fmt"
	"strings"

	"jetlumen/go-backend/internal/domains/contracts"
)

type Mode string

const (
	ModeTransfer Mode = "transfer"
	ModeTimeLock Mode = "timelock"
	ModeSwap     Mode = "swap"
)

// Request is one user action. Only the fields for its Mode are meaningful and
// none of them are format checked before the ledger sees them. Epochs are
// milliseconds since the Unix epoch.
type Request struct {
	Mode         Mode   `json:"mode"`
	Recipient    string `json:"recipient,omitempty"`
	Amount       string `json:"amount,omitempty"`
	UnlockTime   int64  `json:"unlockTime,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	AmountFrom   string `json:"amountFrom,omitempty"`
	AmountTo     string `json:"amountTo,omitempty"`
	Expiration   int64  `json:"expiration,omitempty"`
}

// ValidateMode checks the mode tag and nothing else.
func (r Request) ValidateMode() error {
	switch Mode(strings.ToLower(strings.TrimSpace(string(r.Mode)))) {
	case ModeTransfer, ModeTimeLock, ModeSwap:
		return nil
	default:
		return fmt.Errorf("%w: %q", contracts.ErrInvalidOperation, r.Mode)
	}
}

// Normalized returns the request with a canonical lower-case mode.
func (r Request) Normalized() Request {
	r.Mode = Mode(strings.ToLower(strings.TrimSpace(string(r.Mode))))
	return r
}

// Envelope is an unsigned transaction ready for the wallet.
type Envelope struct {
	XDR               string `json:"xdr"`
	Hash              string `json:"hash"`
	NetworkPassphrase string `json:"networkPassphrase"`
}

type SignedEnvelope struct {
	XDR           string `json:"signedXdr"`
	SignerAddress string `json:"signerAddress,omitempty"`
}

type SubmissionResult struct {
	Hash       string `json:"hash"`
	Ledger     int32  `json:"ledger"`
	Successful bool   `json:"successful"`
	FeeCharged int64  `json:"feeCharged"`
	ResultXDR  string `json:"resultXdr,omitempty"`
}

type TransactionRecord struct {
	Hash           string `json:"hash"`
	Ledger         int32  `json:"ledger"`
	Successful     bool   `json:"successful"`
	SourceAccount  string `json:"sourceAccount"`
	FeeCharged     int64  `json:"feeCharged"`
	OperationCount int32  `json:"operationCount"`
	Memo           string `json:"memo,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type OperationRecord struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	TransactionHash string `json:"transactionHash"`
	Successful      bool   `json:"successful"`
}

// Client is the remote ledger endpoint.
type Client interface {
	SequenceNumber(ctx context.Context, address string) (int64, error)
	SubmitTransactionXDR(ctx context.Context, signedXDR string) (SubmissionResult, error)
	Transaction(ctx context.Context, hash string) (TransactionRecord, error)
	Operations(ctx context.Context, hash string) ([]OperationRecord, error)
}
