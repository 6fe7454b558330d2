package metrics_test

import (
	"testing"

	"github.com/jrsteele09/signals-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.SessionEvent(metrics.EventLogin)
	m.SessionEvent(metrics.EventLogin)
	m.DeepLink("detail", metrics.OutcomeNavigated)

	require.Equal(t, 2.0, m.SessionEventCount(metrics.EventLogin))
	require.Equal(t, 0.0, m.SessionEventCount(metrics.EventLogout))
	require.Equal(t, 1.0, m.DeepLinkCount("detail", metrics.OutcomeNavigated))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.SessionEvent(metrics.EventLogout)
		m.DeepLink("x", metrics.OutcomeFailed)
		m.APIRequest("GET", "2xx")
	})
}
