// Package session owns the authentication lifecycle: restoring a stored credential at start,
// login, logout, refresh and reconciling with unauthorized responses from the API.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/signals-client/api"
	"github.com/jrsteele09/signals-client/credentials"
	apperrors "github.com/jrsteele09/signals-client/internal/errors"
	"github.com/jrsteele09/signals-client/internal/metrics"
	"github.com/jrsteele09/signals-client/token"
	"github.com/jrsteele09/signals-client/users"
)

// AuthAPI is the remote half of the session lifecycle.
type AuthAPI interface {
	GetMyProfile(ctx context.Context) (*users.User, error)
	RefreshToken(ctx context.Context, currentToken string) (*api.TokenRefreshResponse, error)
	Logout(ctx context.Context, token string) error
}

// QueryCache is cleared whenever the session ends.
type QueryCache interface {
	Clear()
}

// Deps are the collaborators a Controller is built from.
type Deps struct {
	Credentials credentials.Store
	AuthAPI     AuthAPI
	Cache       QueryCache
}

// Controller is the single owner of session state for the process.
type Controller struct {
	credentials credentials.Store
	auth        AuthAPI
	cache       QueryCache
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu        sync.RWMutex
	state     Session
	listeners map[uuid.UUID]func(Session)

	initOnce sync.Once
	ready    chan struct{}
	refresh  singleflight.Group
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

func NewController(deps Deps, options ...ControllerOption) (*Controller, error) {
	if deps.Credentials == nil {
		return nil, errors.New("[NewController] Credentials is required")
	}
	if deps.AuthAPI == nil {
		return nil, errors.New("[NewController] AuthAPI is required")
	}
	if deps.Cache == nil {
		return nil, errors.New("[NewController] Cache is required")
	}

	c := &Controller{
		credentials: deps.Credentials,
		auth:        deps.AuthAPI,
		cache:       deps.Cache,
		logger:      log.Logger,
		state:       Session{Phase: PhaseInitializing},
		listeners:   make(map[uuid.UUID]func(Session)),
		ready:       make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// State returns a snapshot of the session.
func (c *Controller) State() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Ready is closed once the session leaves its initial phases.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Controller) Subscribe(fn func(Session)) (unsubscribe func()) {
	id := uuid.New()
	c.mu.Lock()
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) update(mutate func(*Session)) {
	c.mu.Lock()
	mutate(&c.state)
	snapshot := c.state
	listeners := make([]func(Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Initialize restores a stored credential. Only the first call does any work; failures leave
// the session unauthenticated and are never returned.
func (c *Controller) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		c.restore(ctx)
		close(c.ready)
	})
}

func (c *Controller) restore(ctx context.Context) {
	stored, ok := c.credentials.Read(ctx)
	if !ok || stored == "" {
		c.logger.Debug().Msg("No stored credential")
		c.update(func(s *Session) { s.Phase = PhaseReady })
		return
	}

	if err := token.Validate(stored); err != nil {
		c.logger.Info().Err(err).Msg("Stored credential rejected, clearing")
		c.credentials.Clear(ctx)
		c.metrics.SessionEvent(metrics.EventRestoreFailed)
		c.update(func(s *Session) { s.Phase = PhaseReady })
		return
	}

	c.update(func(s *Session) {
		s.Phase = PhaseRestoring
		s.Token = stored
		s.ProfileLoading = true
	})

	user, err := c.auth.GetMyProfile(ctx)
	if err != nil {
		c.logger.Warn().Err(&ProfileLoadError{Err: err}).Msg("Restoring session failed, continuing unauthenticated")
		c.credentials.Clear(ctx)
		c.metrics.SessionEvent(metrics.EventRestoreFailed)
		c.update(func(s *Session) {
			if s.Token == stored {
				s.Token = ""
				s.User = nil
			}
			s.ProfileLoading = false
			s.Phase = PhaseReady
		})
		return
	}

	c.metrics.SessionEvent(metrics.EventRestored)
	c.update(func(s *Session) {
		if s.Token == stored {
			s.User = user
		}
		s.ProfileLoading = false
		s.Phase = PhaseReady
	})
	c.logger.Debug().Int64("user_id", user.ID).Msg("Session restored")
}

// Login adopts raw as the session credential and loads the profile. An invalid token is
// rejected before anything is stored; a profile failure rolls the login back.
func (c *Controller) Login(ctx context.Context, raw string) error {
	if err := token.Validate(raw); err != nil {
		c.metrics.SessionEvent(metrics.EventLoginFailed)
		return &InvalidTokenError{Err: err}
	}

	if err := c.credentials.Write(ctx, raw); err != nil {
		c.metrics.SessionEvent(metrics.EventLoginFailed)
		return apperrors.Wrapf(err, "store credential")
	}

	c.update(func(s *Session) {
		s.Token = raw
		s.ProfileLoading = true
	})

	user, err := c.auth.GetMyProfile(ctx)
	if err != nil {
		c.credentials.Clear(ctx)
		c.update(func(s *Session) {
			s.Token = ""
			s.User = nil
			s.ProfileLoading = false
		})
		c.metrics.SessionEvent(metrics.EventLoginFailed)
		return &ProfileLoadError{Err: err}
	}

	c.update(func(s *Session) {
		s.User = user
		s.ProfileLoading = false
	})
	c.metrics.SessionEvent(metrics.EventLogin)
	c.logger.Info().Int64("user_id", user.ID).Msg("Logged in")
	return nil
}

// Logout ends the session. The remote call is best effort; local state is always cleared.
func (c *Controller) Logout(ctx context.Context) {
	if current := c.State().Token; current != "" {
		if err := c.auth.Logout(ctx, current); err != nil {
			c.logger.Warn().Err(err).Msg("Remote logout failed")
		}
	}

	c.credentials.Clear(ctx)
	c.update(func(s *Session) {
		s.Token = ""
		s.User = nil
		s.ProfileLoading = false
	})
	c.cache.Clear()
	c.metrics.SessionEvent(metrics.EventLogout)
}

// RefreshToken exchanges the held token for a new one. Without a token it does nothing.
// Any failure logs the session out. Concurrent calls share one request.
func (c *Controller) RefreshToken(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		return nil, c.refreshToken(ctx)
	})
	return err
}

func (c *Controller) refreshToken(ctx context.Context) error {
	current := c.State().Token
	if current == "" {
		return nil
	}

	resp, err := c.auth.RefreshToken(ctx, current)
	if err != nil {
		return c.refreshFailed(ctx, err)
	}
	if err := token.Validate(resp.AccessToken); err != nil {
		return c.refreshFailed(ctx, apperrors.Wrapf(err, "refreshed token"))
	}
	if err := c.credentials.Write(ctx, resp.AccessToken); err != nil {
		return c.refreshFailed(ctx, apperrors.Wrapf(err, "store refreshed credential"))
	}

	c.update(func(s *Session) { s.Token = resp.AccessToken })
	c.metrics.SessionEvent(metrics.EventRefresh)
	c.logger.Debug().Msg("Token refreshed")
	return nil
}

func (c *Controller) refreshFailed(ctx context.Context, err error) error {
	c.logger.Err(err).Msg("Token refresh failed, logging out")
	c.metrics.SessionEvent(metrics.EventRefreshFailed)
	c.Logout(ctx)
	return &RefreshError{Err: err}
}

// HandleUnauthorized reconciles in-memory state after the API rejected the credential.
// The request layer has already removed the stored credential.
func (c *Controller) HandleUnauthorized(ev api.UnauthorizedEvent) {
	c.logger.Warn().Str("url", ev.URL).Int("status", ev.Status).Msg("Unauthorized response, clearing session")
	c.update(func(s *Session) {
		s.Token = ""
		s.User = nil
		s.ProfileLoading = false
	})
	c.cache.Clear()
	c.metrics.SessionEvent(metrics.EventUnauthorized)
}
