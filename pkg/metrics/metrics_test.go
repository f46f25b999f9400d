package metrics_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/opst/mlpipe/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Resolved(metrics.ResolutionFound)
	m.Resolved(metrics.ResolutionFound)
	m.Resolved(metrics.ResolutionAbsent)
	m.CacheDecided(metrics.CacheHit)
	m.HTTPRequest(http.MethodGet, "/api/artifacts/", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions(metrics.ResolutionFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions(metrics.ResolutionAbsent)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Resolutions(metrics.ResolutionError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheDecisions(metrics.CacheHit)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := []string{}
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "mlpipe_blessed_model_resolutions_total")
	assert.Contains(t, names, "mlpipe_execution_cache_decisions_total")
	assert.Contains(t, names, "mlpipe_http_requests_total")
	assert.Contains(t, names, "mlpipe_http_request_duration_seconds")
}

func TestNop(t *testing.T) {
	// collectors of Nop are independent from each other.
	a, b := metrics.Nop(), metrics.Nop()
	a.Resolved(metrics.ResolutionFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Resolutions(metrics.ResolutionFound)))
}
