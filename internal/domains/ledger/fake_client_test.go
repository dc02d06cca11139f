package ledger

import (
	"context"
	"sync"
)

type fakeClient struct {
	mu         sync.Mutex
	seq        int64
	seqErr     error
	submitRes  SubmissionResult
	submitErr  error
	submitted  []string
	txRecord   TransactionRecord
	ops        []OperationRecord
	queryErr   error
	seqLookups int
}

func (f *fakeClient) SequenceNumber(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqLookups++
	return f.seq, f.seqErr
}

func (f *fakeClient) SubmitTransactionXDR(_ context.Context, signedXDR string) (SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, signedXDR)
	return f.submitRes, f.submitErr
}

func (f *fakeClient) Transaction(_ context.Context, _ string) (TransactionRecord, error) {
	return f.txRecord, f.queryErr
}

func (f *fakeClient) Operations(_ context.Context, _ string) ([]OperationRecord, error) {
	return f.ops, f.queryErr
}
