package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/api"
	"github.com/jrsteele09/signals-client/app"
	"github.com/jrsteele09/signals-client/credentials"
	"github.com/jrsteele09/signals-client/deeplink"
	"github.com/jrsteele09/signals-client/internal/config"
	"github.com/jrsteele09/signals-client/internal/testing/fakeapi"
	"github.com/jrsteele09/signals-client/token/tokentest"
	"github.com/jrsteele09/signals-client/users"
)

func testConfig(t *testing.T, server *fakeapi.Server, dataFolder string) config.Config {
	t.Helper()
	t.Setenv("FOLDER", "")
	t.Setenv("SIGNALS_API_BASE_URL", "")
	t.Setenv("SIGNALS_SECURE_KEY_FILE", "")
	t.Setenv("SIGNALS_DEEP_LINK_SCHEME", "")
	return config.NewWithFile(config.FileConfig{
		Env:        "TEST",
		APIBaseURL: server.URL(),
		DataFolder: dataFolder,
	})
}

func newApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := app.New(context.Background(), nil)
	require.Error(t, err)
}

func TestApp_ColdStartUnauthenticated(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))

	a.Start(context.Background())

	state := a.Session.State()
	require.False(t, state.IsLoading())
	require.False(t, state.IsAuthenticated())
	require.Empty(t, server.Requests())
	require.Equal(t, 1, a.Unauthorized.Subscribers())
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	for name, withKey := range map[string]bool{"encrypted tier": true, "database fallback": false} {
		t.Run(name, func(t *testing.T) {
			server := fakeapi.New(t)
			dataFolder := t.TempDir()
			cfg := testConfig(t, server, dataFolder)
			if withKey {
				_, err := credentials.EnsureKeyFile(cfg.GetSecureKeyFile())
				require.NoError(t, err)
			}

			tok := tokentest.Valid(t, 7)
			server.AcceptToken(tok)

			first, err := app.New(context.Background(), cfg)
			require.NoError(t, err)
			first.Start(context.Background())
			require.Equal(t, withKey, first.Credentials.PrimaryAvailable(context.Background()))
			require.NoError(t, first.Session.Login(context.Background(), tok))
			require.NoError(t, first.Close())

			if withKey {
				entries, err := os.ReadDir(cfg.GetSecureStoreFolder())
				require.NoError(t, err)
				require.Len(t, entries, 1)
			}

			second := newApp(t, cfg)
			second.Start(context.Background())

			state := second.Session.State()
			require.True(t, state.IsAuthenticated())
			require.Equal(t, tok, state.Token)
			require.Equal(t, int64(7), state.User.ID)
		})
	}
}

func TestApp_UnauthorizedResponseEndsSession(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))
	a.Start(context.Background())

	tok := tokentest.Valid(t, 7)
	server.AcceptToken(tok)
	require.NoError(t, a.Session.Login(context.Background(), tok))
	server.RevokeToken(tok)

	_, err := a.Profile(context.Background())

	var unauthorized *api.UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
	require.False(t, a.Session.State().IsAuthenticated())
	require.False(t, a.Session.State().HasToken())
	_, stored := a.Credentials.Read(context.Background())
	require.False(t, stored)
}

func TestApp_ProfileIsCached(t *testing.T) {
	server := fakeapi.New(t)
	server.AcceptAnyToken()
	a := newApp(t, testConfig(t, server, t.TempDir()))

	_, err := a.Profile(context.Background())
	require.NoError(t, err)
	_, err = a.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, server.Count("GET", "/users/me"))

	a.Session.Logout(context.Background())
	_, err = a.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, server.Count("GET", "/users/me"))
}

func TestApp_DeepLinks(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))
	a.Start(context.Background())

	a.Router.HandleInitialURL("bamtoly://dashboard?date=2024-01-01&q=AAPL")
	nav := deeplink.NewStackNavigator(false)
	a.SetNavigator(nav)

	require.Equal(t, "2024-01-01", a.Filters.State().Date)
	require.Equal(t, deeplink.ScreenLogin, nav.Current().Screen)

	tok := tokentest.Valid(t, 7)
	server.AcceptToken(tok)
	callback := "bamtoly://oauth/callback?token=" + tok + "&user_id=7&nickname=trader&provider=kakao&is_new_user=false"
	require.NoError(t, a.HandleURL(context.Background(), callback))

	require.True(t, a.Session.State().IsAuthenticated())
	require.Equal(t, deeplink.ScreenDashboard, nav.Current().Screen)

	require.NoError(t, a.HandleURL(context.Background(), "bamtoly://detail?symbol=AAPL&models=GPT4,CLAUDE"))
	require.Equal(t, deeplink.ScreenSignalDetail, nav.Current().Screen)
	require.Equal(t, "AAPL", nav.Current().Params.Symbol)

	require.Equal(t, "bamtoly://dashboard?date=2024-01-01&q=AAPL&models=GPT4%2CCLAUDE&condition=OR", a.ShareLink())

	a.Session.Logout(context.Background())
	require.Equal(t, deeplink.ScreenLogin, nav.Current().Screen)
}

func TestApp_ReplacedNavigatorStopsTrackingSession(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))
	a.Start(context.Background())

	replaced := deeplink.NewStackNavigator(false)
	a.SetNavigator(replaced)
	current := deeplink.NewStackNavigator(false)
	a.SetNavigator(current)

	tok := tokentest.Valid(t, 7)
	server.AcceptToken(tok)
	require.NoError(t, a.Session.Login(context.Background(), tok))

	require.Equal(t, deeplink.ScreenDashboard, current.Current().Screen)
	require.Equal(t, deeplink.ScreenLogin, replaced.Current().Screen)
	require.Len(t, replaced.History(), 1)
}

func TestApp_OAuthCallbackWithExpiredToken(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))
	a.Start(context.Background())

	callback := "bamtoly://?token=" + tokentest.Expired(t, 7) + "&user_id=7&nickname=trader&provider=google&is_new_user=true"
	err := a.HandleURL(context.Background(), callback)
	require.Error(t, err)
	require.Empty(t, server.Requests())
}

func TestApp_OAuthURL(t *testing.T) {
	server := fakeapi.New(t)
	a := newApp(t, testConfig(t, server, t.TempDir()))

	u, err := a.OAuthURL(users.ProviderGoogle)
	require.NoError(t, err)
	require.Equal(t, server.URL()+"auth/oauth/google/authorize?client_redirect=bamtoly%3A%2F%2Foauth%2Fcallback", u)
}

func TestApp_SendMagicLink(t *testing.T) {
	server := fakeapi.New(t)
	server.AcceptAnyToken()
	a := newApp(t, testConfig(t, server, t.TempDir()))

	user, err := a.SendMagicLink(context.Background(), "trader@example.com")
	require.NoError(t, err)
	require.Equal(t, "trader@example.com", user.Email)
	require.Equal(t, 1, server.Count("POST", "/auth/magic-link/send"))
}

func TestApp_FiltersPersistAcrossRestart(t *testing.T) {
	server := fakeapi.New(t)
	cfg := testConfig(t, server, t.TempDir())

	first, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	first.Filters.SetModels([]string{"GPT4", "CLAUDE"})
	require.NoError(t, first.Close())

	second := newApp(t, cfg)
	require.Equal(t, []string{"GPT4", "CLAUDE"}, second.Filters.State().Models)
	require.FileExists(t, filepath.Join(cfg.GetDataFolder(), "signals.db"))
}
