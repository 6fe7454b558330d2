package deeplink_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/deeplink"
	"github.com/jrsteele09/signals-client/filters"
	apperrors "github.com/jrsteele09/signals-client/internal/errors"
	"github.com/jrsteele09/signals-client/internal/metrics"
	fakekvstore "github.com/jrsteele09/signals-client/kvstore/repofake"
)

type recordingNavigator struct {
	routes []deeplink.Route
	err    error
}

func (n *recordingNavigator) Navigate(route deeplink.Route) error {
	if n.err != nil {
		return n.err
	}
	n.routes = append(n.routes, route)
	return nil
}

type routerFixture struct {
	filters *filters.Store
	metrics *metrics.Metrics
	router  *deeplink.Router
	nav     *recordingNavigator
}

func newRouter(t *testing.T) *routerFixture {
	t.Helper()
	store, err := filters.NewStore(context.Background(), fakekvstore.NewFakeKVStore())
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	router, err := deeplink.NewRouter(store, deeplink.WithMetrics(m))
	require.NoError(t, err)
	return &routerFixture{filters: store, metrics: m, router: router, nav: &recordingNavigator{}}
}

func TestNewRouter_RequiresPatcher(t *testing.T) {
	_, err := deeplink.NewRouter(nil)
	require.Error(t, err)
}

func TestHandle_DetailAppliesFiltersAndNavigates(t *testing.T) {
	f := newRouter(t)
	f.router.SetNavigator(f.nav)

	f.router.Handle("bamtoly://detail?symbol=AAPL&date=2024-01-01&models=GPT4,CLAUDE")

	state := f.filters.State()
	require.Equal(t, "2024-01-01", state.Date)
	require.Equal(t, []string{"GPT4", "CLAUDE"}, state.Models)
	require.Equal(t, []filters.Condition{filters.Or}, state.Conditions)

	require.Len(t, f.nav.routes, 1)
	route := f.nav.routes[0]
	require.Equal(t, deeplink.ScreenSignalDetail, route.Screen)
	require.Equal(t, "AAPL", route.Params.Symbol)
	require.Equal(t, "2024-01-01", *route.Params.Date)
	require.Nil(t, route.Params.AIModel)
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("detail", metrics.OutcomeNavigated))
}

func TestHandle_PredictWithoutSymbolOnlyPatchesFilters(t *testing.T) {
	f := newRouter(t)
	f.router.SetNavigator(f.nav)

	f.router.Handle("bamtoly://predict?date=2024-02-02&strategy_type=swing")

	state := f.filters.State()
	require.Equal(t, "2024-02-02", state.Date)
	require.Equal(t, "swing", *state.StrategyType)
	require.Empty(t, f.nav.routes)
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("predict", metrics.OutcomeIgnored))
}

func TestHandle_Routes(t *testing.T) {
	tests := []struct {
		url    string
		screen deeplink.Screen
		symbol string
	}{
		{"bamtoly://predict?symbol=TSLA&aiModel=GPT4", deeplink.ScreenPrediction, "TSLA"},
		{"bamtoly://login", deeplink.ScreenLogin, ""},
		{"bamtoly://dashboard?date=2024-01-01&q=AAPL", deeplink.ScreenDashboard, ""},
		{"bamtoly://settings", deeplink.ScreenDashboard, ""},
		{"https://ox-universe.bamtoly.com/detail?symbol=NVDA", deeplink.ScreenSignalDetail, "NVDA"},
		{"exp://192.168.0.10:8081/--/predict?symbol=AMD", deeplink.ScreenPrediction, "AMD"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			f := newRouter(t)
			f.router.SetNavigator(f.nav)

			f.router.Handle(tt.url)

			require.Len(t, f.nav.routes, 1)
			require.Equal(t, tt.screen, f.nav.routes[0].Screen)
			if tt.symbol != "" {
				require.Equal(t, tt.symbol, f.nav.routes[0].Params.Symbol)
			}
		})
	}
}

func TestHandle_EmptyPathIsNoop(t *testing.T) {
	f := newRouter(t)
	f.router.SetNavigator(f.nav)
	before := f.filters.State()

	f.router.Handle("bamtoly://?date=2024-01-01")

	require.Empty(t, f.nav.routes)
	require.Equal(t, before, f.filters.State())
}

func TestHandle_NotReadyDrops(t *testing.T) {
	f := newRouter(t)
	before := f.filters.State()

	f.router.Handle("bamtoly://detail?symbol=AAPL&date=2024-01-01")
	f.router.SetNavigator(f.nav)

	require.Empty(t, f.nav.routes)
	require.Equal(t, before, f.filters.State())
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("unknown", metrics.OutcomeDropped))
}

func TestHandle_NotReadyLogsReason(t *testing.T) {
	store, err := filters.NewStore(context.Background(), fakekvstore.NewFakeKVStore())
	require.NoError(t, err)
	var logs bytes.Buffer
	router, err := deeplink.NewRouter(store, deeplink.WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	router.Handle("bamtoly://detail?symbol=AAPL")

	require.Contains(t, logs.String(), apperrors.ErrNotReady.Error())
}

func TestHandleInitialURL_DeferredUntilReady(t *testing.T) {
	f := newRouter(t)

	f.router.HandleInitialURL("bamtoly://detail?symbol=AAPL")
	require.False(t, f.router.Ready())
	require.Empty(t, f.nav.routes)

	f.router.SetNavigator(f.nav)
	require.True(t, f.router.Ready())
	require.Len(t, f.nav.routes, 1)

	f.router.SetNavigator(f.nav)
	require.Len(t, f.nav.routes, 1)
}

func TestHandleInitialURL_WhenReady(t *testing.T) {
	f := newRouter(t)
	f.router.SetNavigator(f.nav)

	f.router.HandleInitialURL("bamtoly://login")
	require.Len(t, f.nav.routes, 1)
}

func TestHandle_ErrorsAreContained(t *testing.T) {
	f := newRouter(t)
	f.nav.err = errors.New("screen missing")
	f.router.SetNavigator(f.nav)

	require.NotPanics(t, func() {
		f.router.Handle("bamtoly://detail?symbol=AAPL&q=APPLE")
		f.router.Handle("bamtoly://de tail")
		f.router.Handle("no scheme at all")
	})

	require.Equal(t, "APPLE", *f.filters.State().Query)
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("detail", metrics.OutcomeFailed))
	require.Equal(t, float64(2), f.metrics.DeepLinkCount("unknown", metrics.OutcomeFailed))
}

func TestHandle_PanickingNavigatorContained(t *testing.T) {
	f := newRouter(t)
	f.router.SetNavigator(deeplink.NavigateFunc(func(deeplink.Route) error { panic("boom") }))

	require.NotPanics(t, func() { f.router.Handle("bamtoly://login") })
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("login", metrics.OutcomeFailed))
}

func TestHandle_UnauthenticatedNavigator(t *testing.T) {
	f := newRouter(t)
	nav := deeplink.NewStackNavigator(false)
	f.router.SetNavigator(nav)

	f.router.Handle("bamtoly://detail?symbol=AAPL")

	require.Equal(t, deeplink.ScreenLogin, nav.Current().Screen)
	require.Equal(t, float64(1), f.metrics.DeepLinkCount("detail", metrics.OutcomeFailed))
}
