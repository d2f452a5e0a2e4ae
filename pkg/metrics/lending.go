package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Borrow lifecycle transitions used as label values.
const (
	TransitionRequest = "request"
	TransitionApprove = "approve"
	TransitionReject  = "reject"
	TransitionReturn  = "return"
	TransitionRenew   = "renew"
)

// LendingMetrics counts borrow lifecycle events, reminders and fine recomputes.
// A nil *LendingMetrics is a valid no-op.
type LendingMetrics struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	reminders   *prometheus.CounterVec
	finesSet    prometheus.Counter
}

// NewLendingMetrics registers the lending metrics on the provided registerer.
func NewLendingMetrics(reg prometheus.Registerer) *LendingMetrics {
	if reg == nil {
		return nil
	}
	m := &LendingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrow_transitions_total",
			Help:      "Borrow record state transitions that committed.",
		}, []string{"transition"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrow_conflicts_total",
			Help:      "Borrow transitions refused because the record or book changed underneath.",
		}, []string{"transition"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminder emails by kind and outcome.",
		}, []string{"kind", "outcome"}),
		finesSet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_updated_total",
			Help:      "Overdue fines whose stored amount changed during a recompute.",
		}),
	}
	reg.MustRegister(m.transitions, m.conflicts, m.reminders, m.finesSet)
	return m
}

func (m *LendingMetrics) IncTransition(transition string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

func (m *LendingMetrics) IncConflict(transition string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncReminder records one reminder attempt; outcome is sent, skipped or failed.
func (m *LendingMetrics) IncReminder(kind, outcome string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (m *LendingMetrics) AddFinesUpdated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.finesSet.Add(float64(n))
}
