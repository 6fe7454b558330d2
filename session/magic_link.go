package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/signals-client/users"
)

// DefaultMagicLinkPollInterval is how often the profile is checked while a magic link is pending.
const DefaultMagicLinkPollInterval = 2 * time.Second

// ProfileFetcher loads the current user.
type ProfileFetcher interface {
	GetMyProfile(ctx context.Context) (*users.User, error)
}

// MagicLinkPoller detects completion of a magic link login by polling the profile endpoint.
type MagicLinkPoller struct {
	fetcher  ProfileFetcher
	interval time.Duration
	logger   zerolog.Logger
}

func NewMagicLinkPoller(fetcher ProfileFetcher, interval time.Duration, logger *zerolog.Logger) (*MagicLinkPoller, error) {
	if fetcher == nil {
		return nil, errors.New("[NewMagicLinkPoller] fetcher is required")
	}
	if interval <= 0 {
		interval = DefaultMagicLinkPollInterval
	}
	p := &MagicLinkPoller{fetcher: fetcher, interval: interval, logger: log.Logger}
	if logger != nil {
		p.logger = *logger
	}
	return p, nil
}

// Poll fetches the profile immediately and then every interval until one arrives.
// It stops with ctx.Err() when ctx is done.
func (p *MagicLinkPoller) Poll(ctx context.Context) (*users.User, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		user, err := p.fetcher.GetMyProfile(ctx)
		if err == nil && user != nil {
			return user, nil
		}
		p.logger.Debug().Err(err).Int("attempt", attempt).Msg("Magic link not confirmed yet")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
