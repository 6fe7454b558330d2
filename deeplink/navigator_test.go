package deeplink_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/deeplink"
	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

func TestInitialRoute(t *testing.T) {
	require.Equal(t, deeplink.ScreenDashboard, deeplink.InitialRoute(true).Screen)
	require.Equal(t, deeplink.ScreenLogin, deeplink.InitialRoute(false).Screen)
}

func TestStackNavigator(t *testing.T) {
	nav := deeplink.NewStackNavigator(true)
	require.Equal(t, deeplink.ScreenDashboard, nav.Current().Screen)

	require.NoError(t, nav.Navigate(deeplink.Route{Screen: deeplink.ScreenSignalDetail, Params: &deeplink.Params{Symbol: "AAPL"}}))
	require.Equal(t, deeplink.ScreenSignalDetail, nav.Current().Screen)

	err := nav.Navigate(deeplink.Route{Screen: deeplink.ScreenLogin})
	require.ErrorIs(t, err, apperrors.ErrScreenUnavailable)

	require.True(t, nav.Back())
	require.False(t, nav.Back())
	require.Equal(t, deeplink.ScreenDashboard, nav.Current().Screen)
}

func TestStackNavigator_SetAuthenticated(t *testing.T) {
	nav := deeplink.NewStackNavigator(false)
	require.Error(t, nav.Navigate(deeplink.Route{Screen: deeplink.ScreenDashboard}))

	nav.SetAuthenticated(true)
	require.Equal(t, deeplink.ScreenDashboard, nav.Current().Screen)

	nav.SetAuthenticated(false)
	require.Equal(t, deeplink.ScreenLogin, nav.Current().Screen)

	screens := []deeplink.Screen{}
	for _, r := range nav.History() {
		screens = append(screens, r.Screen)
	}
	require.Equal(t, []deeplink.Screen{deeplink.ScreenLogin, deeplink.ScreenDashboard, deeplink.ScreenLogin}, screens)
}
