package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/signals-client/users"
)

// TokenRefreshResponse is returned by the refresh endpoint.
type TokenRefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MagicLinkSendResponse is returned after a magic link email is queued.
type MagicLinkSendResponse struct {
	Message string `json:"message"`
}

// AuthService wraps the authentication and profile endpoints.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// GetMyProfile fetches the current user.
func (s *AuthService) GetMyProfile(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := s.client.DoBase(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges the current token for a new one.
func (s *AuthService) RefreshToken(ctx context.Context, currentToken string) (*TokenRefreshResponse, error) {
	var resp TokenRefreshResponse
	body := map[string]string{"current_token": currentToken}
	if err := s.client.DoBase(ctx, http.MethodPost, "/auth/token/refresh", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("refresh response missing access_token")
	}
	return &resp, nil
}

// Logout revokes token on the server.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.client.DoBase(ctx, http.MethodPost, "/auth/logout", nil, map[string]string{"token": token}, nil)
}

// SendMagicLink asks the server to email a one time login link.
func (s *AuthService) SendMagicLink(ctx context.Context, email string) (*MagicLinkSendResponse, error) {
	var resp MagicLinkSendResponse
	if err := s.client.DoBase(ctx, http.MethodPost, "/auth/magic-link/send", nil, map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OAuthURL is the page that starts an OAuth login; the server redirects to clientRedirect
// with the OAuth callback parameters when it completes.
func (s *AuthService) OAuthURL(provider users.AuthProvider, clientRedirect string) (string, error) {
	if !provider.IsOAuth() {
		return "", fmt.Errorf("unsupported oauth provider %q", provider)
	}
	return s.client.resolve(fmt.Sprintf("auth/oauth/%s/authorize", provider), url.Values{"client_redirect": {clientRedirect}}), nil
}
