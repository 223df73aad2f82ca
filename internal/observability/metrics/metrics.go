package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics exposes counters/histograms for session store operations.
type StoreMetrics struct {
	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	expiredTotal     prometheus.Counter
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindcare",
			Subsystem: "session_store",
			Name:      "operations_total",
			Help:      "Total session store operations",
		}, []string{"op", "result"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindcare",
			Subsystem: "session_store",
			Name:      "operation_latency_seconds",
			Help:      "Latency of session store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		expiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mindcare",
			Subsystem: "session_store",
			Name:      "appointments_expired_total",
			Help:      "Scheduled appointments purged on read after their slot passed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.operationLatency, m.expiredTotal)
	return m
}

// ObserveOperation records one store call. result is "ok", "noop" or "error".
func (m *StoreMetrics) ObserveOperation(op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(op, result).Inc()
	m.operationLatency.WithLabelValues(op).Observe(seconds)
}

func (m *StoreMetrics) ObserveExpired() {
	if m == nil {
		return
	}
	m.expiredTotal.Inc()
}
