package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records order lifecycle counters.
type LifecycleMetrics struct {
	ordersCreated     *prometheus.CounterVec
	paymentsReported  prometheus.Counter
	paymentsConfirmed prometheus.Counter
	paymentsRejected  prometheus.Counter
	ordersCompleted   prometheus.Counter
	debitsBlocked     prometheus.Counter
}

// NewLifecycleMetrics registers the order lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by quote route.",
	}, []string{"route"})
	paymentsReported := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_reported_total",
		Help: "Customer payment self-reports accepted.",
	})
	paymentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Operator payment confirmations.",
	})
	paymentsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_rejected_total",
		Help: "Operator payment rejections.",
	})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Orders that reached the completed status.",
	})
	debitsBlocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_debits_blocked_total",
		Help: "Debits refused because the balance would go negative.",
	})
	reg.MustRegister(ordersCreated, paymentsReported, paymentsConfirmed, paymentsRejected, ordersCompleted, debitsBlocked)
	return &LifecycleMetrics{
		ordersCreated:     ordersCreated,
		paymentsReported:  paymentsReported,
		paymentsConfirmed: paymentsConfirmed,
		paymentsRejected:  paymentsRejected,
		ordersCompleted:   ordersCompleted,
		debitsBlocked:     debitsBlocked,
	}
}

// IncOrderCreated counts a created order by its quote route (auto or manual).
func (m *LifecycleMetrics) IncOrderCreated(route string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(route)).Inc()
}

// IncPaymentReported counts an accepted payment self-report.
func (m *LifecycleMetrics) IncPaymentReported() {
	if m == nil || m.paymentsReported == nil {
		return
	}
	m.paymentsReported.Inc()
}

// IncPaymentConfirmed counts a confirmed payment.
func (m *LifecycleMetrics) IncPaymentConfirmed() {
	if m == nil || m.paymentsConfirmed == nil {
		return
	}
	m.paymentsConfirmed.Inc()
}

// IncPaymentRejected counts a rejected payment.
func (m *LifecycleMetrics) IncPaymentRejected() {
	if m == nil || m.paymentsRejected == nil {
		return
	}
	m.paymentsRejected.Inc()
}

// IncOrderCompleted counts a completed order.
func (m *LifecycleMetrics) IncOrderCompleted() {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
}

// IncDebitBlocked counts a debit refused on insufficient funds.
func (m *LifecycleMetrics) IncDebitBlocked() {
	if m == nil || m.debitsBlocked == nil {
		return
	}
	m.debitsBlocked.Inc()
}

// DispatcherMetrics records outbox publishing outcomes.
type DispatcherMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewDispatcherMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatcherMetrics(reg prometheus.Registerer) *DispatcherMetrics {
	if reg == nil {
		return &DispatcherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events delivered to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	reg.MustRegister(published, failed)
	return &DispatcherMetrics{published: published, failed: failed}
}

// IncPublished counts a delivered event.
func (m *DispatcherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed counts a failed publish attempt.
func (m *DispatcherMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
