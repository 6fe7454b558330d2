package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/signals-client/internal/metrics"
)

const maxErrorBody = 64 << 10

// DefaultTimeout bounds a request when no timeout or HTTP client is configured.
const DefaultTimeout = 15 * time.Second

// CredentialSource is the slice of the credential store the request layer needs.
type CredentialSource interface {
	Read(ctx context.Context) (string, bool)
	Clear(ctx context.Context)
}

// Client issues JSON requests against the signals API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	credentials  CredentialSource
	unauthorized *Broadcaster
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	timeout      time.Duration
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, including those sent through a client given to WithHTTPClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for baseURL. Requests carry the stored bearer token when present,
// and 401 responses clear it and are published on unauthorized.
func NewClient(baseURL string, credentials CredentialSource, unauthorized *Broadcaster, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("[NewClient] invalid baseURL: %w", err)
	}
	if credentials == nil {
		return nil, errors.New("[NewClient] credentials are required")
	}
	if unauthorized == nil {
		return nil, errors.New("[NewClient] unauthorized broadcaster is required")
	}

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		credentials:  credentials,
		unauthorized: unauthorized,
		logger:       log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.timeout > 0 {
		// Copy so an injected client is not modified.
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// resolve joins path onto the base URL without doubling the separating slash.
func (c *Client) resolve(path string, query url.Values) string {
	full := c.baseURL
	if strings.HasSuffix(full, "/") && strings.HasPrefix(path, "/") {
		full += path[1:]
	} else {
		full += path
	}
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// Do sends a request and decodes a JSON response into out (which may be nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fullURL := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := c.credentials.Read(ctx); ok && token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.APIRequest(method, "error")
		c.logger.Err(err).Str("method", method).Str("url", fullURL).Msg("API request failed")
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.APIRequest(method, fmt.Sprintf("%dxx", resp.StatusCode/100))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failure(ctx, method, fullURL, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("api %s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) failure(ctx context.Context, method, fullURL string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	respErr := decodeErrorBody(resp.StatusCode, data)

	c.logger.Error().
		Str("method", method).
		Str("url", fullURL).
		Int("status", resp.StatusCode).
		Str("message", respErr.Message).
		Msg("API request rejected")

	if resp.StatusCode == http.StatusUnauthorized {
		c.credentials.Clear(ctx)
		c.unauthorized.Publish(UnauthorizedEvent{URL: fullURL, Status: resp.StatusCode, At: time.Now()})
		return &UnauthorizedError{URL: fullURL, Status: resp.StatusCode}
	}
	return respErr
}

// DoBase sends a request whose response is wrapped in a BaseResponse and decodes its data into out.
func (c *Client) DoBase(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var envelope BaseResponse[json.RawMessage]
	if err := c.Do(ctx, method, path, query, body, &envelope); err != nil {
		return err
	}

	if !envelope.Success {
		respErr := &ResponseError{StatusCode: http.StatusOK, Message: "API Error"}
		if envelope.Error != nil {
			respErr.Code = envelope.Error.Code
			if envelope.Error.Message != "" {
				respErr.Message = envelope.Error.Message
			}
		}
		return respErr
	}

	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("api %s %s: decode data: %w", method, path, err)
	}
	return nil
}
