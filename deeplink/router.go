// Package deeplink turns external URLs into navigation and filter updates.
package deeplink

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/signals-client/filters"
	apperrors "github.com/jrsteele09/signals-client/internal/errors"
	"github.com/jrsteele09/signals-client/internal/metrics"
)

// Navigator is the navigation surface.
type Navigator interface {
	Navigate(Route) error
}

// FilterPatcher receives the filter part of a deep link.
type FilterPatcher interface {
	SetFilters(filters.Patch)
}

// Router handles deep links once a navigator is attached. The URL that launched the process
// is held until then; later URLs that arrive early are dropped.
type Router struct {
	filters FilterPatcher
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	navigator  Navigator
	initialURL string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

func NewRouter(patcher FilterPatcher, options ...RouterOption) (*Router, error) {
	if patcher == nil {
		return nil, errors.New("[NewRouter] filter patcher is required")
	}
	r := &Router{filters: patcher, logger: log.Logger}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// SetNavigator attaches the navigation surface and replays a held initial URL.
// A nil navigator detaches it.
func (r *Router) SetNavigator(nav Navigator) {
	r.mu.Lock()
	r.navigator = nav
	pending := r.initialURL
	if nav != nil {
		r.initialURL = ""
	}
	r.mu.Unlock()

	if nav != nil && pending != "" {
		r.logger.Debug().Str("url", pending).Msg("Replaying initial deep link")
		r.dispatch(nav, pending)
	}
}

func (r *Router) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigator != nil
}

// HandleInitialURL handles the launch URL, deferring it until a navigator is attached.
func (r *Router) HandleInitialURL(raw string) {
	if raw == "" {
		return
	}
	r.mu.Lock()
	nav := r.navigator
	if nav == nil {
		r.initialURL = raw
	}
	r.mu.Unlock()

	if nav != nil {
		r.dispatch(nav, raw)
	}
}

// Handle handles a URL opened while the process is running. Without a navigator it is dropped.
func (r *Router) Handle(raw string) {
	r.mu.Lock()
	nav := r.navigator
	r.mu.Unlock()

	if nav == nil {
		r.logger.Warn().Err(apperrors.ErrNotReady).Str("url", raw).Msg("Skipping deep link")
		r.metrics.DeepLink("unknown", metrics.OutcomeDropped)
		return
	}
	r.dispatch(nav, raw)
}

// dispatch applies the filter patch and navigates. Failures are logged and contained.
func (r *Router) dispatch(nav Navigator, raw string) {
	label := "unknown"
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("url", raw).Msg("Failed to handle deep link")
			r.metrics.DeepLink(label, metrics.OutcomeFailed)
		}
	}()

	intent, err := Parse(raw)
	if err != nil {
		r.logger.Err(err).Str("url", raw).Msg("Failed to handle deep link")
		r.metrics.DeepLink(label, metrics.OutcomeFailed)
		return
	}
	if intent.Path == "" {
		r.metrics.DeepLink(label, metrics.OutcomeIgnored)
		return
	}
	label = pathLabel(intent.Path)

	if intent.RawQuery != "" {
		r.filters.SetFilters(filters.ParseQueryString(intent.RawQuery))
	}

	route, ok := Resolve(intent)
	if !ok {
		r.logger.Debug().Str("path", intent.Path).Msg("Deep link has no symbol, not navigating")
		r.metrics.DeepLink(label, metrics.OutcomeIgnored)
		return
	}

	if err := nav.Navigate(route); err != nil {
		r.logger.Warn().Err(err).Str("route", route.String()).Msg("Deep link navigation failed")
		r.metrics.DeepLink(label, metrics.OutcomeFailed)
		return
	}
	r.metrics.DeepLink(label, metrics.OutcomeNavigated)
}

func pathLabel(path string) string {
	switch path {
	case "detail", "predict", "login", "dashboard":
		return path
	default:
		return "other"
	}
}

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(Route) error

func (f NavigateFunc) Navigate(route Route) error {
	return f(route)
}
