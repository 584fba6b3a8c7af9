package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	r := NewRegistry()

	r.RecordRun("static", "ok", 5, 120*time.Millisecond)
	r.RecordRun("static", "ok", 3, 40*time.Millisecond)
	r.RecordRun("incremental", "error", 1, time.Millisecond)

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	byName := make(map[string]bool)
	for _, f := range families {
		byName[f.GetName()] = true
	}
	assert.True(t, byName["communities_runs_total"])
	assert.True(t, byName["communities_run_duration_seconds"])
	assert.True(t, byName["communities_run_iterations"])

	for _, f := range families {
		if f.GetName() != "communities_runs_total" {
			continue
		}
		total := 0.0
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		assert.Equal(t, 3.0, total)
	}
}

func TestRecordBatch(t *testing.T) {
	r := NewRegistry()

	r.RecordBatch("delta-screening", "ok", 12, 7)

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "communities_affected_vertices" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
			assert.Equal(t, 7.0, f.GetMetric()[0].GetHistogram().GetSampleSum())
		}
	}
	assert.True(t, found, "affected-vertices histogram not gathered")
}

func TestHandler_ServesPrometheusText(t *testing.T) {
	r := NewRegistry()
	r.CommunitiesTotal.Set(42)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "communities_detected_total 42"), "gauge missing from exposition")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.BatchesTotal.WithLabelValues("ok").Inc()

	families, err := b.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "communities_batches_total" {
			assert.Empty(t, f.GetMetric(), "second registry saw the first registry's counter")
		}
	}
}
