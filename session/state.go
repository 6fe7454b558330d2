package session

import "github.com/jrsteele09/signals-client/users"

// Phase is the cold start phase of the session.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseRestoring
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseRestoring:
		return "restoring"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the authentication state.
type Session struct {
	Token          string
	User           *users.User
	Phase          Phase
	ProfileLoading bool
}

// IsAuthenticated is derived from the profile, not the token: a held token whose profile has
// not loaded does not count.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

func (s Session) IsLoading() bool {
	return s.Phase != PhaseReady
}

func (s Session) HasToken() bool {
	return s.Token != ""
}
