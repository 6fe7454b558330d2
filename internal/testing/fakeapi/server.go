// Package fakeapi is an in-process stand-in for the signals backend, used by tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jrsteele09/signals-client/users"
)

// Prefix is the path the API is mounted under.
const Prefix = "/api/v1"

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          map[string]any
}

// Server serves the auth and profile endpoints from in-memory state.
type Server struct {
	srv *httptest.Server

	mu             sync.Mutex
	profile        users.User
	acceptAny      bool
	validTokens    map[string]bool
	refreshedToken string
	refreshStatus  int
	logoutStatus   int
	profileStatus  int
	refreshDelay   time.Duration
	requests       []Request
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		profile: users.User{
			ID:           7,
			Email:        "trader@example.com",
			Nickname:     "trader",
			AuthProvider: users.ProviderLocal,
			CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			IsActive:     true,
			Role:         users.RoleUser,
		},
		validTokens: make(map[string]bool),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route(Prefix, func(r chi.Router) {
		r.Get("/users/me", s.getProfile)
		r.Post("/auth/token/refresh", s.refresh)
		r.Post("/auth/logout", s.logout)
		r.Post("/auth/magic-link/send", s.sendMagicLink)
		r.Get("/empty", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/plain-error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		})
	})

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, with a trailing slash.
func (s *Server) URL() string {
	return s.srv.URL + Prefix + "/"
}

// AcceptToken makes token a valid bearer credential.
func (s *Server) AcceptToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validTokens[token] = true
}

// RevokeToken makes token rejected again.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.validTokens, token)
}

// AcceptAnyToken serves the profile regardless of the bearer credential.
func (s *Server) AcceptAnyToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptAny = true
}

func (s *Server) SetProfile(u users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = u
}

// SetProfileStatus forces the profile endpoint to fail with status.
func (s *Server) SetProfileStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileStatus = status
}

// SetRefreshedToken sets the token handed out by the refresh endpoint. It is accepted afterwards.
func (s *Server) SetRefreshedToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshedToken = token
}

// SetRefreshStatus forces the refresh endpoint to fail with status.
func (s *Server) SetRefreshStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// SetRefreshDelay slows the refresh endpoint down.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// SetLogoutStatus forces the logout endpoint to fail with status.
func (s *Server) SetLogoutStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutStatus = status
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit path (relative to the API prefix).
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, Prefix),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				req.Body = body
			}
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.profileStatus
	authorized := s.acceptAny || s.validTokens[s.bearer(r)]
	profile := s.profile
	s.mu.Unlock()

	switch {
	case status != 0:
		writeJSON(w, status, map[string]any{"success": false, "error": map[string]any{"message": "profile unavailable", "code": "PROFILE"}})
	case !authorized:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profile})
	}
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.refreshStatus
	delay := s.refreshDelay
	next := s.refreshedToken
	if status == 0 && next != "" {
		s.validTokens[next] = true
	}
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		writeJSON(w, status, map[string]any{"success": false, "error": map[string]any{"message": "refresh rejected"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"access_token": next, "token_type": "bearer"},
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	status := s.logoutStatus
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"success": false, "error": map[string]any{"message": "logout failed"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
}

func (s *Server) sendMagicLink(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"message": "Magic link sent"}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
