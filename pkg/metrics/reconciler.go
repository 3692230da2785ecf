package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReconcilerMetrics tracks pool lock and refund outcomes.
type ReconcilerMetrics struct {
	poolsLocked    *prometheus.CounterVec
	lockConflicts  prometheus.Counter
	refundAttempts prometheus.Counter
	refundFailures prometheus.Counter
}

// NewReconcilerMetrics registers the reconciler metrics on the provided registerer.
func NewReconcilerMetrics(reg prometheus.Registerer) *ReconcilerMetrics {
	if reg == nil {
		return &ReconcilerMetrics{}
	}
	poolsLocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quayside",
		Name:      "pools_locked_total",
		Help:      "Pools locked, labelled by trigger.",
	}, []string{"trigger"})
	lockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quayside",
		Name:      "pool_lock_conflicts_total",
		Help:      "Lock attempts rejected because another worker held the lease.",
	})
	refundAttempts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quayside",
		Name:      "refund_attempts_total",
		Help:      "Delivery-fee refund calls issued to the payment processor.",
	})
	refundFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quayside",
		Name:      "refund_failures_total",
		Help:      "Refunds abandoned after retry exhaustion.",
	})
	reg.MustRegister(poolsLocked, lockConflicts, refundAttempts, refundFailures)
	return &ReconcilerMetrics{
		poolsLocked:    poolsLocked,
		lockConflicts:  lockConflicts,
		refundAttempts: refundAttempts,
		refundFailures: refundFailures,
	}
}

// IncPoolLocked increments the locked-pool counter for the trigger label.
func (m *ReconcilerMetrics) IncPoolLocked(trigger string) {
	if m == nil || m.poolsLocked == nil {
		return
	}
	m.poolsLocked.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncLockConflict increments the lease-conflict counter.
func (m *ReconcilerMetrics) IncLockConflict() {
	if m == nil || m.lockConflicts == nil {
		return
	}
	m.lockConflicts.Inc()
}

// IncRefundAttempt increments the refund-attempt counter.
func (m *ReconcilerMetrics) IncRefundAttempt() {
	if m == nil || m.refundAttempts == nil {
		return
	}
	m.refundAttempts.Inc()
}

// IncRefundFailure increments the refund-failure counter.
func (m *ReconcilerMetrics) IncRefundFailure() {
	if m == nil || m.refundFailures == nil {
		return
	}
	m.refundFailures.Inc()
}
