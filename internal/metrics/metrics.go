// Package metrics holds the Prometheus collectors of the inventory service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shelter_inventory"

type Metrics struct {
	transactions   *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	conflictRetry  prometheus.Counter
	lowStockEvents prometheus.Counter
	feedingEvents  *prometheus.CounterVec
	auditDrift     *prometheus.GaugeVec
	lockWait       prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_transactions_total",
			Help:      "Ledger transactions committed, by reason and direction.",
		}, []string{"reason", "direction"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_rejections_total",
			Help:      "Operations rejected with a typed error, by operation and error kind.",
		}, []string{"operation", "kind"}),
		conflictRetry: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_conflict_retries_total",
			Help:      "Atomic units retried after a compare-and-set conflict.",
		}),
		lowStockEvents: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_events_total",
			Help:      "Items that crossed below their reorder threshold.",
		}),
		feedingEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeding_events_total",
			Help:      "Feeding events processed by the consumption listener, by result.",
		}, []string{"result"}),
		auditDrift: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_drifting_items",
			Help:      "Items whose cached quantity disagrees with the ledger or lots at the last audit.",
		}, []string{"tenant"}),
		lockWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_lock_wait_seconds",
			Help:      "Time spent acquiring per-item locks.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

func (m *Metrics) Transaction(reason, direction string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(reason, direction).Inc()
}

func (m *Metrics) Rejection(operation, kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) ConflictRetry() {
	if m == nil {
		return
	}
	m.conflictRetry.Inc()
}

func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStockEvents.Inc()
}

func (m *Metrics) FeedingEvent(result string) {
	if m == nil {
		return
	}
	m.feedingEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditDrift(tenant string, items int) {
	if m == nil {
		return
	}
	m.auditDrift.WithLabelValues(tenant).Set(float64(items))
}

func (m *Metrics) LockWait(seconds float64) {
	if m == nil {
		return
	}
	m.lockWait.Observe(seconds)
}
