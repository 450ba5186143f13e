package autoremote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

type Response struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) SendMessage(ctx context.Context, message string, opts Options) (*Response, error) {
	if message == "" {
		return nil, fmt.Errorf("send message: %w", ErrMissingPayload)
	}

	params := ResolveParams(c.cfg, opts, nil)
	params.Set("message", message)

	return c.dispatch(ctx, KindMessage, c.baseURL(opts), params)
}

// SendIntent falls back to the configured key, sender and TTL. Device
// settings are not applied; target and password are sent only when given.
func (c *Client) SendIntent(ctx context.Context, intent string, opts Options) (*Response, error) {
	if intent == "" {
		return nil, fmt.Errorf("send intent: %w", ErrMissingPayload)
	}

	params := resolve(c.cfg, opts, nil, defaultNoDevice)
	params.Set("intent", intent)

	return c.dispatch(ctx, KindIntent, c.baseURL(opts), params)
}

// SendNotification sends notif as-is on top of the resolved parameters.
// message is the optional action performed when the notification arrives.
// Defaults are applied as in SendIntent.
func (c *Client) SendNotification(ctx context.Context, message string, notif Notification, opts Options) (*Response, error) {
	params := resolve(c.cfg, opts, notif.Values(), defaultNoDevice)
	if message != "" {
		params.Set("message", message)
	}

	return c.dispatch(ctx, KindNotification, c.baseURL(opts), params)
}

// KeyFromURL requests rawURL, following redirects, and returns the key query
// parameter of the final URL. When the key is repeated the last value wins.
func (c *Client) KeyFromURL(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck

	final := resp.Request.URL
	c.logger.Debug("Resolved key url", "url", rawURL, "final", redactURL(final))

	var keys []string
	for _, k := range final.Query()["key"] {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", &KeyNotFoundError{URL: final.String()}
	}

	return keys[len(keys)-1], nil
}

func (c *Client) baseURL(opts Options) string {
	if opts.BaseURL != "" {
		return opts.BaseURL
	}
	return c.cfg.BaseURL
}

func (c *Client) dispatch(ctx context.Context, kind Kind, baseURL string, params url.Values) (*Response, error) {
	endpoint, err := EndpointURL(kind, baseURL)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.logger.Debug("Sending AutoRemote request", "kind", kind, "url", redactURL(u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RequestError{URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	result := &Response{
		URL:        endpoint,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &RequestError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	c.logger.Debug("AutoRemote request succeeded", "kind", kind, "status", resp.StatusCode)
	return result, nil
}

func redactURL(u *url.URL) string {
	q := u.Query()
	for _, name := range []string{"key", "password"} {
		if q.Has(name) {
			q.Set(name, "REDACTED")
		}
	}
	redacted := *u
	redacted.RawQuery = q.Encode()
	return redacted.String()
}
