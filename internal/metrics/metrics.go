// Package metrics exposes Prometheus counters for the session and deep link subsystems.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "signals_client"

// Session event names.
const (
	EventRestored      = "restored"
	EventRestoreFailed = "restore_failed"
	EventLogin         = "login"
	EventLoginFailed   = "login_failed"
	EventLogout        = "logout"
	EventRefresh       = "refresh"
	EventRefreshFailed = "refresh_failed"
	EventUnauthorized  = "unauthorized"
)

// Deep link outcomes.
const (
	OutcomeNavigated = "navigated"
	OutcomeIgnored   = "ignored"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

type Metrics struct {
	sessionEvents *prometheus.CounterVec
	deepLinks     *prometheus.CounterVec
	apiRequests   *prometheus.CounterVec
}

// New registers the client counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Session lifecycle events by type",
		}, []string{"event"}),
		deepLinks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deeplink",
			Name:      "handled_total",
			Help:      "Deep links handled by path and outcome",
		}, []string{"path", "outcome"}),
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by method and status class",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) DeepLink(path, outcome string) {
	if m == nil {
		return
	}
	m.deepLinks.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) APIRequest(method, status string) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, status).Inc()
}

// SessionEventCount returns the current value of a session event counter.
func (m *Metrics) SessionEventCount(event string) float64 {
	return counterValue(m.sessionEvents.WithLabelValues(event))
}

// DeepLinkCount returns the current value of a deep link counter.
func (m *Metrics) DeepLinkCount(path, outcome string) float64 {
	return counterValue(m.deepLinks.WithLabelValues(path, outcome))
}
