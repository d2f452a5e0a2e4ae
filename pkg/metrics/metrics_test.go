package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	job := "overdue-fines"
	m.ObserveRun(job, 250*time.Millisecond, nil)
	m.ObserveRun(job, time.Second, errors.New("db down"))
	m.ObserveRun("", time.Millisecond, errors.New("boom"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "library_cron_job_runs_total", map[string]string{"job": job, "outcome": OutcomeSuccess}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "library_cron_job_runs_total", map[string]string{"job": job, "outcome": OutcomeFailure}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "library_cron_job_runs_total", map[string]string{"job": "unknown", "outcome": OutcomeFailure}))

	hist := findMetric(t, mfs, "library_cron_job_duration_seconds", map[string]string{"job": job})
	assert.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())

	last := findMetric(t, mfs, "library_cron_job_last_success_timestamp_seconds", map[string]string{"job": job})
	assert.Greater(t, last.GetGauge().GetValue(), 0.0)
}

func TestLendingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLendingMetrics(reg)

	m.IncTransition(TransitionApprove)
	m.IncTransition(TransitionApprove)
	m.IncConflict(TransitionApprove)
	m.IncReminder("overdue", "sent")
	m.AddFinesUpdated(3)
	m.AddFinesUpdated(0)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, mfs, "library_borrow_transitions_total", map[string]string{"transition": "approve"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "library_borrow_conflicts_total", map[string]string{"transition": "approve"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "library_reminders_total", map[string]string{"kind": "overdue", "outcome": "sent"}))
	assert.Equal(t, 3.0, counterValue(t, mfs, "library_fines_updated_total", nil))
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/borrows", 201, 20*time.Millisecond)
	m.Observe("POST", "/api/v1/borrows", 201, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, mfs, "library_http_requests_total", map[string]string{"method": "POST", "route": "/api/v1/borrows", "status": "201"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "library_http_requests_total", map[string]string{"route": "unknown", "status": "404"}))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var lending *LendingMetrics
	lending.IncTransition(TransitionReturn)
	lending.IncReminder("due_soon", "failed")
	lending.AddFinesUpdated(1)

	assert.Nil(t, NewLendingMetrics(nil))
	cron := NewCronJobMetrics(nil)
	cron.ObserveRun("job", time.Second, nil)

	var requests *HTTPMetrics
	requests.Observe("GET", "/", 200, time.Second)
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
