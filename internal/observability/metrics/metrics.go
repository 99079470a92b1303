package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking funnel.
type BookingMetrics struct {
	draftsStarted   prometheus.Counter
	checkoutTotal   *prometheus.CounterVec
	checkoutLatency prometheus.Histogram
	webhookTotal    *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		draftsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentari",
			Subsystem: "booking",
			Name:      "drafts_started_total",
			Help:      "Total booking drafts started",
		}),
		checkoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentari",
			Subsystem: "booking",
			Name:      "checkout_total",
			Help:      "Total checkout handoffs by outcome",
		}, []string{"status"}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mentari",
			Subsystem: "booking",
			Name:      "checkout_latency_seconds",
			Help:      "Latency of invoice creation at the payment gateway",
			Buckets:   prometheus.DefBuckets,
		}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentari",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Total settlement webhook events by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.draftsStarted, m.checkoutTotal, m.checkoutLatency, m.webhookTotal)
	return m
}

func (m *BookingMetrics) ObserveDraftStarted() {
	if m == nil {
		return
	}
	m.draftsStarted.Inc()
}

func (m *BookingMetrics) ObserveCheckout(status string, seconds float64) {
	if m == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(status).Inc()
	m.checkoutLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveWebhook(status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(status).Inc()
}
