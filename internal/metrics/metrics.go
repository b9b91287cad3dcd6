package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	Registry    *prometheus.Registry
	RemoteCalls *prometheus.CounterVec
	QuotaCalls  *prometheus.CounterVec
	Posts       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RemoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xpilot",
			Name:      "remote_calls_total",
			Help:      "Calls made to the X API, by operation and outcome.",
		}, []string{"op", "outcome"}),
		QuotaCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xpilot",
			Name:      "quota_calls_total",
			Help:      "API calls recorded against the quota ledger, by call type.",
		}, []string{"call_type"}),
		Posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xpilot",
			Name:      "posts_total",
			Help:      "Post records written, by resulting status.",
		}, []string{"status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RemoteCalls,
		m.QuotaCalls,
		m.Posts,
	)
	return m
}

func (m *Metrics) ObserveRemote(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RemoteCalls.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveQuota(callType string) {
	if m == nil {
		return
	}
	m.QuotaCalls.WithLabelValues(callType).Inc()
}

func (m *Metrics) ObservePost(status string) {
	if m == nil {
		return
	}
	m.Posts.WithLabelValues(status).Inc()
}
