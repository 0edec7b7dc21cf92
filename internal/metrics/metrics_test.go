package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(StatusTransitions.WithLabelValues("in_progress"))
	StatusTransitions.WithLabelValues("in_progress").Inc()
	after := testutil.ToFloat64(StatusTransitions.WithLabelValues("in_progress"))
	assert.Equal(t, before+1, after)

	ImportRows.WithLabelValues("created").Add(3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ImportRows.WithLabelValues("created")), 3.0)

	SweepAlerts.WithLabelValues("detained").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SweepAlerts.WithLabelValues("detained")), 1.0)
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveRequest("GET", 200, 42*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "shoptrack_http_request_duration_seconds")
}
