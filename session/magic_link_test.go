package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/session"
	"github.com/jrsteele09/signals-client/users"
)

type pendingProfile struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *pendingProfile) GetMyProfile(context.Context) (*users.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("not confirmed")
	}
	return &users.User{ID: 9, Email: "trader@example.com"}, nil
}

func TestMagicLinkPoller_PollsUntilProfile(t *testing.T) {
	fetcher := &pendingProfile{failures: 2}
	poller, err := session.NewMagicLinkPoller(fetcher, 5*time.Millisecond, nil)
	require.NoError(t, err)

	user, err := poller.Poll(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(9), user.ID)
	require.Equal(t, 3, fetcher.calls)
}

func TestMagicLinkPoller_StopsOnCancel(t *testing.T) {
	fetcher := &pendingProfile{failures: 1 << 30}
	poller, err := session.NewMagicLinkPoller(fetcher, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = poller.Poll(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewMagicLinkPoller_RequiresFetcher(t *testing.T) {
	_, err := session.NewMagicLinkPoller(nil, 0, nil)
	require.Error(t, err)
}
