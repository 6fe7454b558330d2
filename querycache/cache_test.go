package querycache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/querycache"
)

func withClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	now := start
	querycache.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { querycache.NowTimeFunc = time.Now })
	return &now
}

func TestInMemoryCache_StaleTime(t *testing.T) {
	now := withClock(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	c := querycache.NewInMemoryCache(time.Minute)

	c.Set("profile", 1)
	v, ok := c.Get("profile")
	require.True(t, ok)
	require.Equal(t, 1, v)

	*now = now.Add(59 * time.Second)
	_, ok = c.Get("profile")
	require.True(t, ok)

	*now = now.Add(time.Second)
	_, ok = c.Get("profile")
	require.False(t, ok)

	require.Equal(t, 1, c.Len())
	c.Cleanup()
	require.Zero(t, c.Len())
}

func TestInMemoryCache_ClearAndInvalidate(t *testing.T) {
	c := querycache.NewInMemoryCache(0)
	c.Set("a", "x")
	c.Set("b", "y")

	c.Invalidate("a")
	_, ok := c.Get("a")
	require.False(t, ok)

	c.Clear()
	require.Zero(t, c.Len())
}

func TestFetch(t *testing.T) {
	c := querycache.NewInMemoryCache(time.Minute)
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := querycache.Fetch(context.Background(), c, "k", fetch)
	require.NoError(t, err)
	require.Equal(t, "value", v)

	v, err = querycache.Fetch(context.Background(), c, "k", fetch)
	require.NoError(t, err)
	require.Equal(t, "value", v)
	require.Equal(t, 1, calls)
}

func TestFetch_ErrorNotCached(t *testing.T) {
	c := querycache.NewInMemoryCache(time.Minute)
	boom := errors.New("boom")

	_, err := querycache.Fetch(context.Background(), c, "k", func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, c.Len())
}
