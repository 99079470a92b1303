package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveDraftStarted()
	m.ObserveDraftStarted()
	m.ObserveCheckout("success", 0.25)
	m.ObserveWebhook("paid")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}
	drafts, ok := byName["mentari_booking_drafts_started_total"]
	if !ok {
		t.Fatal("drafts counter not registered")
	}
	if got := drafts.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("drafts counter = %v, want 2", got)
	}
	if _, ok := byName["mentari_booking_checkout_latency_seconds"]; !ok {
		t.Fatal("checkout latency histogram not registered")
	}
}

func TestBookingMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveCheckout("gateway_error", 1.2)
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveDraftStarted()
	m.ObserveCheckout("success", 0.1)
	m.ObserveWebhook("expired")
}
