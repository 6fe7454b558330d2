package fakeauthapi

import (
	"context"
	"sync"

	"github.com/jrsteele09/signals-client/api"
	"github.com/jrsteele09/signals-client/session"
	"github.com/jrsteele09/signals-client/users"
)

var _ session.AuthAPI = (*FakeAuthAPI)(nil)

// FakeAuthAPI is an in-memory session.AuthAPI with injectable failures.
type FakeAuthAPI struct {
	lock sync.Mutex

	Profile        *users.User
	ProfileErr     error
	RefreshedToken string
	RefreshErr     error
	LogoutErr      error

	// RefreshGate, when set, blocks RefreshToken until it is closed.
	RefreshGate chan struct{}

	ProfileCalls  int
	RefreshCalls  int
	LogoutCalls   int
	LoggedOut     []string
	RefreshedFrom []string
}

func NewFakeAuthAPI(profile *users.User) *FakeAuthAPI {
	return &FakeAuthAPI{Profile: profile}
}

func (f *FakeAuthAPI) GetMyProfile(context.Context) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ProfileCalls++
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	profile := *f.Profile
	return &profile, nil
}

func (f *FakeAuthAPI) RefreshToken(_ context.Context, currentToken string) (*api.TokenRefreshResponse, error) {
	f.lock.Lock()
	f.RefreshCalls++
	f.RefreshedFrom = append(f.RefreshedFrom, currentToken)
	gate := f.RefreshGate
	f.lock.Unlock()

	if gate != nil {
		<-gate
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return &api.TokenRefreshResponse{AccessToken: f.RefreshedToken, TokenType: "bearer"}, nil
}

func (f *FakeAuthAPI) Logout(_ context.Context, token string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.LogoutCalls++
	f.LoggedOut = append(f.LoggedOut, token)
	return f.LogoutErr
}

// Calls returns the total number of remote calls made.
func (f *FakeAuthAPI) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.ProfileCalls + f.RefreshCalls + f.LogoutCalls
}

// RefreshCount returns RefreshCalls under the lock.
func (f *FakeAuthAPI) RefreshCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.RefreshCalls
}
