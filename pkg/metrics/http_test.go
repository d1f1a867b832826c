package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/orders", 201, 120*time.Millisecond)
	m.Observe("POST", "/orders", 201, 80*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "path", "/orders"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 order requests, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "http_requests_total", "path", "undefined"); err != nil {
		t.Fatalf("expected undefined path label: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "path", "/orders"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got < 0.19 {
		t.Fatalf("expected summed duration ~0.2s, got %f", got)
	}
}

func TestDomainMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)
	m.OrderCreated(100)
	m.OrderStatusChanged("ready")
	m.SessionStarted(true)
	m.SessionStarted(false)
	m.FeedbackReceived("food")
	m.FeedbackThrottled()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "meva_order_status_changes_total", "status", "ready"); err != nil || got != 1 {
		t.Fatalf("expected one ready transition, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "meva_table_sessions_total", "result", "reused"); err != nil || got != 1 {
		t.Fatalf("expected one reused session, got %f err=%v", got, err)
	}
	revenue := findMetricFamily(mfs, "meva_orders_amount_total")
	if revenue == nil || revenue.GetMetric()[0].GetCounter().GetValue() != 100 {
		t.Fatalf("expected revenue counter 100")
	}

	var noop *DomainMetrics
	noop.OrderCreated(1)
	NewDomainMetrics(nil).FeedbackThrottled()
}
