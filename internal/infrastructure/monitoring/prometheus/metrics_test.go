package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountVerdict(t *testing.T) {
	t.Parallel()

	m := NewEngineMetrics()
	m.CountVerdict("auto")
	m.CountVerdict("auto")
	m.CountVerdict("board")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdictTotal.WithLabelValues("auto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verdictTotal.WithLabelValues("board")))
}

func TestObserveAnalysis(t *testing.T) {
	t.Parallel()

	m := NewEngineMetrics()
	m.ObserveAnalysis("map_devices", 120*time.Millisecond)
	m.ObserveAnalysis("map_devices", 80*time.Millisecond)

	count := testutil.CollectAndCount(m.analysisDuration, "medreg_engine_analysis_duration_seconds")
	assert.Equal(t, 1, count, "one labeled series expected")
}

func TestSnapshotSizeGauge(t *testing.T) {
	t.Parallel()

	m := NewEngineMetrics()
	m.SetSnapshotSize(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(m.snapshotSize))
}

func TestHandlerServesMetrics(t *testing.T) {
	t.Parallel()

	m := NewEngineMetrics()
	m.CountVerdict("senior")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "medreg_engine_verdicts_total"))
}
