// Package payu is an HTTP client for the PayU REST API: OAuth client
// credentials and order creation.
package payu

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
	"sync"
	"time"
)

const (
	authorizePath = "pl/standard/user/oauth/authorize"
	ordersPath    = "api/v2_1/orders"

	// tokenRefreshMargin renews cached tokens ahead of their expiry.
	tokenRefreshMargin = 30 * time.Second
	maxErrorBody       = 64 << 10
)

var (
	// ErrUnavailable covers transport failures, timeouts and unusable token responses.
	ErrUnavailable = errors.New("payu unavailable")
)

// RejectedError is an explicit refusal by PayU.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("payu rejected request (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("payu rejected request (status %d): %s", e.StatusCode, e.Reason)
}

// Config holds the merchant credentials.
type Config struct {
	// BaseURL is the API root, e.g. https://secure.snd.payu.com/.
	BaseURL      string
	ClientID     string
	ClientSecret string
	PosID        string
}

// Client talks to PayU. It is safe for concurrent use and caches the OAuth
// token until shortly before it expires.
type Client struct {
	cfg        Config
	base       *url.URL
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewClient instantiates the PayU client with sane defaults.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("payu base URL is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse payu base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	// Order creation answers with a redirect that must be read, not followed.
	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{cfg: cfg, base: base, httpClient: &noRedirect, now: time.Now}, nil
}

// PosID returns the merchant point of sale id.
func (c *Client) PosID() string {
	return c.cfg.PosID
}

// Authenticate returns a bearer token, fetching a new one when the cached
// token is missing or about to expire.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	query := url.Values{}
	query.Set("grant_type", "client_credentials")
	query.Set("client_id", c.cfg.ClientID)
	query.Set("client_secret", c.cfg.ClientSecret)
	endpoint := c.base.ResolveReference(&url.URL{Path: authorizePath, RawQuery: query.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: authorize: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("%w: read authorize response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var payload tokenError
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			reason := payload.Error
			if payload.ErrorDescription != "" {
				reason += ": " + payload.ErrorDescription
			}
			return "", &RejectedError{StatusCode: resp.StatusCode, Reason: reason}
		}
		return "", fmt.Errorf("%w: authorize returned %s", ErrUnavailable, resp.Status)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", fmt.Errorf("%w: authorize returned no access token", ErrUnavailable)
	}
	c.token = token.AccessToken
	c.expires = c.now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenRefreshMargin)
	return c.token, nil
}

// CreateOrder registers a payment order. PayU signals success with a 302
// carrying the redirect URI and its own order id; every other answer is a
// rejection.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	if order.MerchantPosID == "" {
		order.MerchantPosID = c.cfg.PosID
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode payu order: %w", err)
	}
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: ordersPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read order response: %w", ErrUnavailable, err)
	}

	var out OrderResponse
	decodeErr := json.Unmarshal(body, &out)
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken(token)
	}
	if resp.StatusCode != http.StatusFound {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Reason: rejectionReason(out, decodeErr, resp.Status)}
	}
	if decodeErr != nil {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Reason: "undecodable order response"}
	}
	if out.RedirectURI == "" {
		out.RedirectURI = resp.Header.Get("Location")
	}
	if out.OrderID == "" || out.RedirectURI == "" {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Reason: "order response lacks orderId or redirectUri"}
	}
	return &out, nil
}

func (c *Client) invalidateToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.expires = time.Time{}
	}
}

func rejectionReason(out OrderResponse, decodeErr error, fallback string) string {
	if decodeErr != nil {
		return fallback
	}
	switch {
	case out.Status.StatusCode != "" && out.Status.StatusDesc != "":
		return out.Status.StatusCode + ": " + out.Status.StatusDesc
	case out.Status.StatusCode != "":
		return out.Status.StatusCode
	default:
		return fallback
	}
}
