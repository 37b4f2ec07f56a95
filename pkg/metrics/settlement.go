package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records checkout round-trips with the game client.
type SettlementMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	fallback prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_settlement_duration_seconds",
		Help:    "Duration of settlement round-trips in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_settlements_total",
		Help: "Settlement attempts by kind and outcome.",
	}, []string{"kind", "outcome"})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_sale_fallback_total",
		Help: "Sales settled through per-unit sellItem calls.",
	})
	reg.MustRegister(duration, outcomes, fallback)
	return &SettlementMetrics{
		duration: duration,
		outcomes: outcomes,
		fallback: fallback,
	}
}

// Observe records one finished settlement.
func (m *SettlementMetrics) Observe(kind, outcome string, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.outcomes.WithLabelValues(kind, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncFallback counts a sale that used the per-unit path.
func (m *SettlementMetrics) IncFallback() {
	if m == nil || m.fallback == nil {
		return
	}
	m.fallback.Inc()
}

// EligibilityMetrics counts refused cart additions.
type EligibilityMetrics struct {
	rejections *prometheus.CounterVec
}

// NewEligibilityMetrics registers the eligibility counter on the provided registerer.
func NewEligibilityMetrics(reg prometheus.Registerer) *EligibilityMetrics {
	if reg == nil {
		return &EligibilityMetrics{}
	}
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_eligibility_rejections_total",
		Help: "Cart additions refused by the eligibility evaluator.",
	}, []string{"reason"})
	reg.MustRegister(rejections)
	return &EligibilityMetrics{rejections: rejections}
}

// IncRejection counts one refusal for reason.
func (m *EligibilityMetrics) IncRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
