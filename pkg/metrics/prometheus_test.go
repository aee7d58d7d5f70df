package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRowsCountsDropped(t *testing.T) {
	r := New()
	r.RecordRows("features", "SPY", 250, 190)
	r.RecordRows("features", "SPY", 10, 10)

	assert.Equal(t, 260.0, testutil.ToFloat64(r.rowsIn.WithLabelValues("features", "SPY")))
	assert.Equal(t, 200.0, testutil.ToFloat64(r.rowsOut.WithLabelValues("features", "SPY")))
	assert.Equal(t, 60.0, testutil.ToFloat64(r.rowsDropped.WithLabelValues("features", "SPY")))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordTicker("ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.tickers.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.tickers.WithLabelValues("ok")))
}

func TestPushSendsToGateway(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits++
		assert.Contains(t, req.URL.Path, "/metrics/job/finlab")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.RecordScore("SPY", "val", "acc", 0.51)
	require.NoError(t, r.Push(context.Background(), srv.URL, "finlab"))
	assert.Equal(t, 1, hits)

	require.NoError(t, r.Push(context.Background(), "", "finlab"))
	assert.Equal(t, 1, hits)
}
