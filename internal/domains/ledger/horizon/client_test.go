package horizon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAddress = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func TestSequenceNumberReadsAccount(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/"+testAddress, r.URL.Path)
		w.Header().Set("Content-Type", "application/hal+json")
		_, _ = w.Write([]byte(`{"id":"` + testAddress + `","account_id":"` + testAddress + `","sequence":"4242"}`))
	})

	seq, err := c.SequenceNumber(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, int64(4242), seq)
}

func TestSubmitTransactionXDRMapsResult(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "AAAA", r.PostForm.Get("tx"))
		_, _ = w.Write([]byte(`{"hash":"abc","ledger":77,"successful":true,"fee_charged":"100","result_xdr":"AAAAAA=="}`))
	})

	res, err := c.SubmitTransactionXDR(context.Background(), "AAAA")
	require.NoError(t, err)
	require.Equal(t, "abc", res.Hash)
	require.Equal(t, int32(77), res.Ledger)
	require.True(t, res.Successful)
	require.Equal(t, int64(100), res.FeeCharged)
}

func TestSubmitTransactionXDRSurfacesResultCodes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"type":"https://stellar.org/horizon-errors/transaction_failed",
			"title":"Transaction Failed",
			"status":400,
			"extras":{"result_codes":{"transaction":"tx_failed","operations":["op_underfunded"]}}
		}`))
	})

	_, err := c.SubmitTransactionXDR(context.Background(), "AAAA")
	require.Error(t, err)
	msg := err.Error()
	require.True(t, strings.Contains(msg, "Transaction Failed"), msg)
	require.True(t, strings.Contains(msg, "tx=tx_failed"), msg)
	require.True(t, strings.Contains(msg, "ops=op_underfunded"), msg)
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SequenceNumber(ctx, testAddress)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}
