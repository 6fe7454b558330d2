// Package app wires the session, credential, filter and deep link services together.
// Each service exists once per App and is passed explicitly to the services that need it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/signals-client/api"
	"github.com/jrsteele09/signals-client/credentials"
	"github.com/jrsteele09/signals-client/deeplink"
	"github.com/jrsteele09/signals-client/filters"
	"github.com/jrsteele09/signals-client/internal/config"
	"github.com/jrsteele09/signals-client/internal/metrics"
	"github.com/jrsteele09/signals-client/kvstore"
	"github.com/jrsteele09/signals-client/querycache"
	"github.com/jrsteele09/signals-client/session"
	"github.com/jrsteele09/signals-client/users"
)

const profileCacheKey = "profile"

// App is the composition root.
type App struct {
	config  config.Config
	logger  zerolog.Logger
	closeKV func() error

	Metrics      *metrics.Metrics
	Credentials  *credentials.TieredStore
	Unauthorized *api.Broadcaster
	Client       *api.Client
	Auth         *api.AuthService
	Cache        *querycache.InMemoryCache
	Session      *session.Controller
	Filters      *filters.Store
	Debouncer    *filters.Debouncer
	Router       *deeplink.Router

	mu             sync.Mutex
	navigator      deeplink.Navigator
	navUnsubscribe func()
	unsubscribe    []func()
	startOnce      sync.Once
}

type options struct {
	logger     zerolog.Logger
	registerer prometheus.Registerer
	kv         kvstore.Store
	httpClient *http.Client
}

// Option configures New.
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers the client metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithKVStore uses kv instead of opening the configured SQLite database.
func WithKVStore(kv kvstore.Store) Option {
	return func(o *options) {
		o.kv = kv
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New builds every service. Nothing touches the network until Start.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[app.New] config is required")
	}
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registerer == nil {
		o.registerer = prometheus.NewRegistry()
	}

	a := &App{config: cfg, logger: o.logger, Metrics: metrics.New(o.registerer)}

	kv := o.kv
	if kv == nil {
		sqlite, err := kvstore.Open(cfg.GetDatabaseFile())
		if err != nil {
			return nil, fmt.Errorf("[app.New] open storage: %w", err)
		}
		kv = sqlite
		a.closeKV = sqlite.Close
	}

	if err := a.build(ctx, kv, o); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, kv kvstore.Store, o options) error {
	var err error
	cfg := a.config

	primary := credentials.NewSecureFileBackend(cfg.GetSecureStoreFolder(), cfg.GetSecureKeyFile())
	a.Credentials, err = credentials.NewTieredStore(primary, credentials.NewKVBackend(kv), credentials.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("[app.New] %w", err)
	}

	a.Unauthorized = api.NewBroadcaster()
	clientOpts := []api.ClientOption{
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithMetrics(a.Metrics),
		api.WithLogger(a.logger),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	a.Client, err = api.NewClient(cfg.GetAPIBaseURL(), a.Credentials, a.Unauthorized, clientOpts...)
	if err != nil {
		return fmt.Errorf("[app.New] %w", err)
	}
	a.Auth = api.NewAuthService(a.Client)

	a.Cache = querycache.NewInMemoryCache(cfg.GetQueryCacheStaleTime())
	a.Session, err = session.NewController(session.Deps{
		Credentials: a.Credentials,
		AuthAPI:     a.Auth,
		Cache:       a.Cache,
	}, session.WithLogger(a.logger), session.WithMetrics(a.Metrics))
	if err != nil {
		return fmt.Errorf("[app.New] %w", err)
	}

	a.Filters, err = filters.NewStore(ctx, kv, filters.WithLogger(a.logger), filters.WithPersistTimeout(cfg.GetPersistTimeout()))
	if err != nil {
		return fmt.Errorf("[app.New] %w", err)
	}
	a.Debouncer = filters.NewDebouncer(a.Filters, cfg.GetFilterDebounce())

	a.Router, err = deeplink.NewRouter(a.Filters, deeplink.WithLogger(a.logger), deeplink.WithMetrics(a.Metrics))
	if err != nil {
		return fmt.Errorf("[app.New] %w", err)
	}
	return nil
}

// Start subscribes the session to unauthorized responses and restores the stored credential.
// It returns once the session is ready.
func (a *App) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		a.mu.Lock()
		a.unsubscribe = append(a.unsubscribe, a.Unauthorized.Subscribe(a.Session.HandleUnauthorized))
		a.mu.Unlock()

		if a.Credentials.PrimaryAvailable(ctx) {
			a.logger.Debug().Msg("Using encrypted credential storage")
		} else {
			a.logger.Info().Msg("Encrypted credential storage unavailable, using local database")
		}
		a.Session.Initialize(ctx)
	})
}

type authAware interface {
	SetAuthenticated(bool)
}

// SetNavigator attaches the navigation surface, replacing any previous one. Navigators that
// track the auth state are kept in step with the session.
func (a *App) SetNavigator(nav deeplink.Navigator) {
	a.mu.Lock()
	if a.navUnsubscribe != nil {
		a.navUnsubscribe()
		a.navUnsubscribe = nil
	}
	a.navigator = nav
	if aware, ok := nav.(authAware); ok {
		aware.SetAuthenticated(a.Session.State().IsAuthenticated())
		a.navUnsubscribe = a.Session.Subscribe(func(s session.Session) {
			aware.SetAuthenticated(s.IsAuthenticated())
		})
	}
	a.mu.Unlock()

	a.Router.SetNavigator(nav)
}

// HandleURL handles an opened URL. OAuth callbacks log in and land on the dashboard;
// everything else goes to the deep link router. Only login failures are returned.
func (a *App) HandleURL(ctx context.Context, raw string) error {
	cb, ok := deeplink.ParseOAuthCallback(raw)
	if !ok {
		a.Router.Handle(raw)
		return nil
	}

	a.logger.Info().Str("provider", cb.Provider).Bool("new_user", cb.IsNewUser).Msg("OAuth callback received")
	if err := a.Session.Login(ctx, cb.Token); err != nil {
		return err
	}

	a.mu.Lock()
	nav := a.navigator
	a.mu.Unlock()
	if nav != nil {
		if err := nav.Navigate(deeplink.Route{Screen: deeplink.ScreenDashboard}); err != nil {
			a.logger.Warn().Err(err).Msg("Navigating after OAuth login failed")
		}
	}
	return nil
}

func (a *App) Config() config.Config {
	return a.config
}

// Profile returns the current user through the query cache.
func (a *App) Profile(ctx context.Context) (*users.User, error) {
	return querycache.Fetch(ctx, a.Cache, profileCacheKey, a.Auth.GetMyProfile)
}

// SendMagicLink emails a login link and waits for it to be confirmed or ctx to end.
func (a *App) SendMagicLink(ctx context.Context, email string) (*users.User, error) {
	if _, err := a.Auth.SendMagicLink(ctx, email); err != nil {
		return nil, err
	}
	poller, err := session.NewMagicLinkPoller(a.Auth, a.config.GetMagicLinkPollInterval(), &a.logger)
	if err != nil {
		return nil, err
	}
	return poller.Poll(ctx)
}

// OAuthURL is the page that starts an OAuth login and returns to this app's scheme.
func (a *App) OAuthURL(provider users.AuthProvider) (string, error) {
	return a.Auth.OAuthURL(provider, a.config.GetDeepLinkScheme()+"://oauth/callback")
}

// ShareLink is a dashboard deep link reproducing the current filters.
func (a *App) ShareLink() string {
	link := a.config.GetDeepLinkScheme() + "://dashboard"
	if query := filters.EncodeQueryString(a.Filters.State()); query != "" {
		link += "?" + query
	}
	return link
}

// Close flushes pending filter updates and releases storage.
func (a *App) Close() error {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	if a.navUnsubscribe != nil {
		unsubscribe = append(unsubscribe, a.navUnsubscribe)
		a.navUnsubscribe = nil
	}
	a.mu.Unlock()
	for _, fn := range unsubscribe {
		fn()
	}

	if a.Debouncer != nil {
		a.Debouncer.Flush()
	}
	if a.closeKV != nil {
		if err := a.closeKV(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
