package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenKey is the single durable slot holding the bearer token.
const TokenKey = "auth_token"

// Store persists the bearer token.
type Store interface {
	// Read returns the stored token, or false when there is none or it cannot be read.
	Read(ctx context.Context) (string, bool)

	// Write persists token. An error means no tier could store it.
	Write(ctx context.Context, token string) error

	// Clear removes the token on a best effort basis.
	Clear(ctx context.Context)
}

// Backend is one storage tier of a TieredStore.
type Backend interface {
	Name() string
	Available(ctx context.Context) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var _ Store = (*TieredStore)(nil)

// TieredStore tries a secure primary backend and falls back to a universally available one.
// Primary availability is probed once and cached for the lifetime of the store.
type TieredStore struct {
	key      string
	primary  Backend
	fallback Backend
	logger   zerolog.Logger

	probeOnce sync.Once
	primaryOK bool
}

// TieredStoreOption configures a TieredStore.
type TieredStoreOption func(*TieredStore)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(logger zerolog.Logger) TieredStoreOption {
	return func(s *TieredStore) {
		s.logger = logger
	}
}

// WithKey overrides the slot name (primarily for testing).
func WithKey(key string) TieredStoreOption {
	return func(s *TieredStore) {
		s.key = key
	}
}

// NewTieredStore builds the store. primary may be nil, in which case every call uses fallback.
func NewTieredStore(primary, fallback Backend, options ...TieredStoreOption) (*TieredStore, error) {
	if fallback == nil {
		return nil, errors.New("[NewTieredStore] fallback backend is required")
	}

	s := &TieredStore{
		key:      TokenKey,
		primary:  primary,
		fallback: fallback,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// PrimaryAvailable reports the cached result of the primary availability probe.
func (s *TieredStore) PrimaryAvailable(ctx context.Context) bool {
	s.probeOnce.Do(func() {
		if s.primary == nil {
			return
		}
		ok, err := s.primary.Available(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("backend", s.primary.Name()).Msg("Credential backend availability check failed, falling back")
			ok = false
		}
		s.primaryOK = ok
		if !ok {
			s.logger.Info().Str("backend", s.fallback.Name()).Msg("Using fallback credential backend")
		}
	})
	return s.primaryOK
}

// Read prefers the primary tier and consults the fallback when the primary has no token,
// which covers writes that fell back.
func (s *TieredStore) Read(ctx context.Context) (string, bool) {
	if s.PrimaryAvailable(ctx) {
		token, ok, err := s.primary.Get(ctx, s.key)
		switch {
		case err != nil:
			s.logger.Error().Err(err).Str("backend", s.primary.Name()).Msg("Failed to read token, trying fallback")
		case ok:
			return token, true
		}
	}

	token, ok, err := s.fallback.Get(ctx, s.key)
	if err != nil {
		s.logger.Error().Err(err).Str("backend", s.fallback.Name()).Msg("Failed to read token from fallback")
		return "", false
	}
	return token, ok
}

func (s *TieredStore) Write(ctx context.Context, token string) error {
	if s.PrimaryAvailable(ctx) {
		err := s.primary.Set(ctx, s.key, token)
		if err == nil {
			return nil
		}
		s.logger.Error().Err(err).Str("backend", s.primary.Name()).Msg("Failed to save token, trying fallback")
	}

	if err := s.fallback.Set(ctx, s.key, token); err != nil {
		s.logger.Error().Err(err).Str("backend", s.fallback.Name()).Msg("Failed to save token to fallback")
		return err
	}
	return nil
}

// Clear deletes the token from every tier so a fallen back copy cannot resurface.
func (s *TieredStore) Clear(ctx context.Context) {
	if s.PrimaryAvailable(ctx) {
		if err := s.primary.Delete(ctx, s.key); err != nil {
			s.logger.Error().Err(err).Str("backend", s.primary.Name()).Msg("Failed to delete token")
		}
	}

	if err := s.fallback.Delete(ctx, s.key); err != nil {
		s.logger.Error().Err(err).Str("backend", s.fallback.Name()).Msg("Failed to delete token from fallback")
	}
}
