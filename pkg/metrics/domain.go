package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics tracks order, session and feedback activity.
type DomainMetrics struct {
	ordersCreated     prometheus.Counter
	orderRevenue      prometheus.Counter
	statusChanges     *prometheus.CounterVec
	sessionsStarted   *prometheus.CounterVec
	feedbackReceived  *prometheus.CounterVec
	feedbackThrottled prometheus.Counter
}

// NewDomainMetrics registers the business counters on reg. A nil registerer
// returns a no-op collector.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	m := &DomainMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed from tables.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_amount_total",
			Help:      "Sum of order totals at creation time.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions by target status.",
		}, []string{"status"}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_sessions_total",
			Help:      "Table session requests split by new or reused.",
		}, []string{"result"}),
		feedbackReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_received_total",
			Help:      "Accepted feedback submissions by category.",
		}, []string{"category"}),
		feedbackThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_rate_limited_total",
			Help:      "Feedback submissions rejected by the IP rate limit.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.orderRevenue, m.statusChanges, m.sessionsStarted, m.feedbackReceived, m.feedbackThrottled)
	return m
}

// OrderCreated counts a new order and its amount.
func (m *DomainMetrics) OrderCreated(amount float64) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
	if amount > 0 {
		m.orderRevenue.Add(amount)
	}
}

// OrderStatusChanged counts a transition into status.
func (m *DomainMetrics) OrderStatusChanged(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// SessionStarted counts a session request.
func (m *DomainMetrics) SessionStarted(isNew bool) {
	if m == nil || m.sessionsStarted == nil {
		return
	}
	result := "reused"
	if isNew {
		result = "new"
	}
	m.sessionsStarted.WithLabelValues(result).Inc()
}

// FeedbackReceived counts an accepted submission.
func (m *DomainMetrics) FeedbackReceived(category string) {
	if m == nil || m.feedbackReceived == nil {
		return
	}
	m.feedbackReceived.WithLabelValues(normalizeLabel(category)).Inc()
}

// FeedbackThrottled counts a rate limited submission.
func (m *DomainMetrics) FeedbackThrottled() {
	if m == nil || m.feedbackThrottled == nil {
		return
	}
	m.feedbackThrottled.Inc()
}
