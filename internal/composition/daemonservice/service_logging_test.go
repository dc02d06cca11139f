package daemonservice

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/platform/metrics"
)

func TestFailLogsAndCountsOnce(t *testing.T) {
	var buf bytes.Buffer
	reg := metrics.NewRegistry()
	s := &Service{logger: slog.New(slog.NewJSONHandler(&buf, nil)), metrics: reg}

	boom := errors.New("boom")
	require.Same(t, boom, s.fail(contracts.ErrorCategoryLedger, "ledger.transaction", "  ", boom))
	require.NoError(t, s.fail(contracts.ErrorCategoryLedger, "ledger.transaction", "", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, componentName, rec["component"])
	require.Equal(t, "ledger.transaction", rec["operation"])
	require.Equal(t, "n/a", rec["correlation_id"])
	require.Equal(t, "ledger", rec["category"])

	count, err := testutil.GatherAndCount(reg.Gatherer(), "jetlumen_errors_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
