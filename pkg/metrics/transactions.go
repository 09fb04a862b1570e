package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TransactionMetrics records checkout log activity.
type TransactionMetrics struct {
	checkouts *prometheus.CounterVec
	checkins  *prometheus.CounterVec
	overdue   prometheus.Gauge
}

// NewTransactionMetrics registers the lifecycle counters on the provided registerer.
func NewTransactionMetrics(reg prometheus.Registerer) *TransactionMetrics {
	if reg == nil {
		return &TransactionMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "equipment_checkouts_total",
		Help: "Equipment check-out attempts by result.",
	}, []string{"result"})
	checkins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "equipment_checkins_total",
		Help: "Equipment check-in attempts by result and reported condition.",
	}, []string{"result", "condition"})
	overdue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "equipment_overdue_items",
		Help: "Items currently flagged overdue by the sweep job.",
	})
	reg.MustRegister(checkouts, checkins, overdue)
	return &TransactionMetrics{
		checkouts: checkouts,
		checkins:  checkins,
		overdue:   overdue,
	}
}

// IncCheckout counts a check-out attempt.
func (t *TransactionMetrics) IncCheckout(result string) {
	if t == nil || t.checkouts == nil {
		return
	}
	t.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncCheckin counts a check-in attempt.
func (t *TransactionMetrics) IncCheckin(result, condition string) {
	if t == nil || t.checkins == nil {
		return
	}
	t.checkins.WithLabelValues(normalizeLabel(result), normalizeLabel(condition)).Inc()
}

// SetOverdueItems publishes the current overdue item count.
func (t *TransactionMetrics) SetOverdueItems(count int) {
	if t == nil || t.overdue == nil {
		return
	}
	t.overdue.Set(float64(count))
}
