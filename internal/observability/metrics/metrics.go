package metrics

import "github.com/prometheus/client_golang/prometheus"

// LocatorMetrics exposes counters/histograms for backend discovery and dispatch.
type LocatorMetrics struct {
	probeTotal      *prometheus.CounterVec
	discoveryTotal  *prometheus.CounterVec
	dispatchTotal   *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
}

func NewLocatorMetrics(reg prometheus.Registerer) *LocatorMetrics {
	m := &LocatorMetrics{
		probeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "locator",
			Name:      "probe_total",
			Help:      "Health probes by candidate and outcome",
		}, []string{"base", "outcome"}),
		discoveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "locator",
			Name:      "discovery_total",
			Help:      "Completed discovery passes by outcome",
		}, []string{"outcome"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "locator",
			Name:      "dispatch_attempt_total",
			Help:      "Dispatch attempts by base and outcome",
		}, []string{"base", "outcome"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "receptionist",
			Subsystem: "locator",
			Name:      "dispatch_seconds",
			Help:      "End-to-end dispatch latency including fallbacks",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.probeTotal, m.discoveryTotal, m.dispatchTotal, m.dispatchLatency)
	return m
}

func (m *LocatorMetrics) ObserveProbe(base, outcome string) {
	if m == nil {
		return
	}
	m.probeTotal.WithLabelValues(base, outcome).Inc()
}

func (m *LocatorMetrics) ObserveDiscovery(found bool) {
	if m == nil {
		return
	}
	m.discoveryTotal.WithLabelValues(outcomeLabel(found)).Inc()
}

func (m *LocatorMetrics) ObserveAttempt(base, outcome string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(base, outcome).Inc()
}

func (m *LocatorMetrics) ObserveDispatch(delivered bool, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(outcomeLabel(delivered)).Observe(seconds)
}

// ContactMetrics counts contact form submissions received by the API.
type ContactMetrics struct {
	submissions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by source and status",
		}, []string{"source", "status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "contact",
			Name:      "notifications_total",
			Help:      "Sales inbox notifications by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.notifications)
	return m
}

func (m *ContactMetrics) ObserveSubmission(source, status string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.submissions.WithLabelValues(source, status).Inc()
}

func (m *ContactMetrics) ObserveNotification(sent bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcomeLabel(sent)).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
