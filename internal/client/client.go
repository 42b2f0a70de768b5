package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// Defaults used when no option overrides them.
const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 1 * 1024 * 1024
	defaultUserAgent   = "prefixscan"
)

// ErrInvalidEndpoint is returned by New when the endpoint is not an absolute http(s) URL.
var ErrInvalidEndpoint = errors.New("invalid endpoint: must be an absolute http or https URL")

// Client queries the autocomplete endpoint.
// It is safe for concurrent use by multiple workers.
type Client struct {
	// endpoint is the autocomplete URL without query string.
	endpoint *url.URL

	// httpClient performs the requests.
	httpClient *http.Client

	// timeout is applied to the HTTP client built by New.
	timeout time.Duration

	// userAgent is sent as the User-Agent header.
	userAgent string

	// headers are injected into every request.
	headers map[string]string

	// proxyAddress is an optional SOCKS5 proxy in host:port form.
	proxyAddress string

	// maxBodySize bounds how much of a response body is read.
	maxBodySize int64

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Proxy and timeout options are
// ignored when a client is supplied; headers are still injected.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithProxy routes requests through a SOCKS5 proxy at address (host:port).
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger used for failed queries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the given endpoint, e.g.
// "http://35.200.185.69:8000/v1/autocomplete".
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}

	c := &Client{
		endpoint:    u,
		timeout:     defaultTimeout,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		hc, err := c.newHTTPClient()
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	if len(c.headers) > 0 {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *c.httpClient
		wrapped.Transport = &headerInjectingTransport{base: base, headers: c.headers}
		c.httpClient = &wrapped
	}

	return c, nil
}

// newHTTPClient builds the default HTTP client, dialing through the SOCKS5
// proxy when one is configured.
func (c *Client) newHTTPClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.MaxIdleConnsPerHost = 16

	if c.proxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}, nil
}

// Endpoint returns the autocomplete URL the client queries.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// autocompleteResponse is the subset of the response body the crawler uses.
type autocompleteResponse struct {
	Names []string `json:"names"`
}

// Fetch returns the suggestions for prefix.
// Any failure is logged and yields an empty result; Fetch never retries.
func (c *Client) Fetch(ctx context.Context, prefix string) []string {
	names, err := c.fetch(ctx, prefix)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("query abandoned", "prefix", prefix, "error", err)
			return nil
		}
		c.logger.Warn("query failed", "prefix", prefix, "error", err)
		return nil
	}
	c.logger.Debug("query completed", "prefix", prefix, "names", len(names))
	return names
}

// fetch performs one request and reports why it failed, if it did.
func (c *Client) fetch(ctx context.Context, prefix string) ([]string, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("query", prefix)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded autocompleteResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}

	return decoded.Names, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// headerInjectingTransport adds static headers to every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
