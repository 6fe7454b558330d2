package deeplink

import (
	"fmt"
	"slices"
	"sync"

	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

var (
	authenticatedScreens   = []Screen{ScreenDashboard, ScreenSignalDetail, ScreenPrediction}
	unauthenticatedScreens = []Screen{ScreenLogin}
)

// InitialRoute is where the navigation surface starts for the given auth state.
func InitialRoute(authenticated bool) Route {
	if authenticated {
		return Route{Screen: ScreenDashboard}
	}
	return Route{Screen: ScreenLogin}
}

// StackNavigator is an in-memory navigation surface. Only the screens of the current auth
// state can be reached; changing it resets the stack to the matching initial route.
type StackNavigator struct {
	mu            sync.Mutex
	authenticated bool
	stack         []Route
	history       []Route
}

func NewStackNavigator(authenticated bool) *StackNavigator {
	initial := InitialRoute(authenticated)
	return &StackNavigator{
		authenticated: authenticated,
		stack:         []Route{initial},
		history:       []Route{initial},
	}
}

func (n *StackNavigator) Navigate(route Route) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	screens := unauthenticatedScreens
	if n.authenticated {
		screens = authenticatedScreens
	}
	if !slices.Contains(screens, route.Screen) {
		return fmt.Errorf("%w: %s", apperrors.ErrScreenUnavailable, route.Screen)
	}

	n.stack = append(n.stack, route)
	n.history = append(n.history, route)
	return nil
}

// SetAuthenticated swaps the available screen set.
func (n *StackNavigator) SetAuthenticated(authenticated bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.authenticated == authenticated {
		return
	}
	n.authenticated = authenticated
	initial := InitialRoute(authenticated)
	n.stack = []Route{initial}
	n.history = append(n.history, initial)
}

// Back pops the current route. The root route is never popped.
func (n *StackNavigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

func (n *StackNavigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// History returns every route shown, oldest first.
func (n *StackNavigator) History() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.history)
}
