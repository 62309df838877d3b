package metrics

import "github.com/prometheus/client_golang/prometheus"

// Approval outcomes used as the "outcome" label.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// ApprovalMetrics tracks goods-out decisions and the stock they release.
type ApprovalMetrics struct {
	decisions    *prometheus.CounterVec
	unitsShipped prometheus.Counter
}

// NewApprovalMetrics registers the approval metrics on the provided registerer.
func NewApprovalMetrics(reg prometheus.Registerer) *ApprovalMetrics {
	if reg == nil {
		return &ApprovalMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goods_out_decisions_total",
		Help: "Goods-out approval decisions by action and outcome.",
	}, []string{"action", "outcome"})
	unitsShipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "goods_out_stock_decremented_total",
		Help: "Units of stock decremented by approved goods-out shipments.",
	})
	reg.MustRegister(decisions, unitsShipped)
	return &ApprovalMetrics{decisions: decisions, unitsShipped: unitsShipped}
}

// Decision records the outcome of an approve/reject call.
func (m *ApprovalMetrics) Decision(action, outcome string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// StockDecremented adds qty to the shipped units counter.
func (m *ApprovalMetrics) StockDecremented(qty int) {
	if m == nil || m.unitsShipped == nil || qty <= 0 {
		return
	}
	m.unitsShipped.Add(float64(qty))
}
