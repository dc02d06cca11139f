package horizon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"

	"jetlumen/go-backend/internal/domains/ledger"
)

const defaultTimeout = 30 * time.Second

// Client adapts horizonclient to ledger.Client.
type Client struct {
	hc *horizonclient.Client
}

var _ ledger.Client = (*Client)(nil)

func New(horizonURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{hc: &horizonclient.Client{
		HorizonURL: strings.TrimRight(horizonURL, "/") + "/",
		HTTP:       httpClient,
	}}
}

func (c *Client) SequenceNumber(ctx context.Context, address string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	account, err := c.hc.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return 0, describe(err)
	}
	return account.GetSequenceNumber()
}

func (c *Client) SubmitTransactionXDR(ctx context.Context, signedXDR string) (ledger.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return ledger.SubmissionResult{}, err
	}
	tx, err := c.hc.SubmitTransactionXDR(signedXDR)
	if err != nil {
		return ledger.SubmissionResult{}, describe(err)
	}
	return ledger.SubmissionResult{
		Hash:       tx.Hash,
		Ledger:     tx.Ledger,
		Successful: tx.Successful,
		FeeCharged: tx.FeeCharged,
		ResultXDR:  tx.ResultXdr,
	}, nil
}

func (c *Client) Transaction(ctx context.Context, hash string) (ledger.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionRecord{}, err
	}
	tx, err := c.hc.TransactionDetail(hash)
	if err != nil {
		return ledger.TransactionRecord{}, describe(err)
	}
	return transactionRecord(tx), nil
}

func (c *Client) Operations(ctx context.Context, hash string) ([]ledger.OperationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := c.hc.Operations(horizonclient.OperationRequest{ForTransaction: hash, Limit: 200})
	if err != nil {
		return nil, describe(err)
	}
	out := make([]ledger.OperationRecord, 0, len(page.Embedded.Records))
	for _, op := range page.Embedded.Records {
		out = append(out, ledger.OperationRecord{
			ID:              op.GetID(),
			Type:            op.GetType(),
			TransactionHash: op.GetTransactionHash(),
			Successful:      op.IsTransactionSuccessful(),
		})
	}
	return out, nil
}

func transactionRecord(tx hProtocol.Transaction) ledger.TransactionRecord {
	return ledger.TransactionRecord{
		Hash:           tx.Hash,
		Ledger:         tx.Ledger,
		Successful:     tx.Successful,
		SourceAccount:  tx.Account,
		FeeCharged:     tx.FeeCharged,
		OperationCount: tx.OperationCount,
		Memo:           tx.Memo,
		CreatedAt:      tx.LedgerCloseTime.UTC().Format(time.RFC3339),
	}
}

// describe flattens a Horizon problem into its title and result codes.
func describe(err error) error {
	hErr := horizonclient.GetError(err)
	if hErr == nil {
		return err
	}
	parts := []string{strings.TrimSpace(hErr.Problem.Title)}
	if codes, codesErr := hErr.ResultCodes(); codesErr == nil && codes != nil {
		if codes.TransactionCode != "" {
			parts = append(parts, "tx="+codes.TransactionCode)
		}
		if len(codes.OperationCodes) > 0 {
			parts = append(parts, "ops="+strings.Join(codes.OperationCodes, ","))
		}
	}
	return fmt.Errorf("horizon: %s: %w", strings.Join(parts, " "), err)
}
