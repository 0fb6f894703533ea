// Package splunk provides a client for the Splunk management REST API,
// covering KV store collections and the stored-credential endpoint.
package splunk

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/go-panw/internal/transport"
)

// Default namespace values. Splunk scopes every collection and credential
// by owner and app.
const (
	DefaultOwner = "nobody"

	defaultTimeout = 30 * time.Second
)

// Sentinel errors for client construction.
var (
	ErrNoBaseURL    = errors.New("splunk: no base URL configured")
	ErrNoSessionKey = errors.New("splunk: no session key configured")
	ErrNoApp        = errors.New("splunk: no app configured")
)

// Client is a Splunk management API client bound to one owner/app
// namespace.
type Client struct {
	baseURL    string
	sessionKey string
	owner      string
	app        string

	transport *transport.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL            string
	sessionKey         string
	owner              string
	app                string
	timeout            time.Duration
	insecureSkipVerify bool
	httpClient         *http.Client
	userAgent          string
}

// WithBaseURL sets the management endpoint, e.g. "https://localhost:8089".
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithSessionKey sets the session key Splunk handed to the input process.
func WithSessionKey(key string) ClientOption {
	return func(c *clientConfig) {
		c.sessionKey = key
	}
}

// WithOwner sets the namespace owner. Defaults to "nobody".
func WithOwner(owner string) ClientOption {
	return func(c *clientConfig) {
		c.owner = owner
	}
}

// WithApp sets the namespace app. Required: collections live inside an app.
func WithApp(app string) ClientOption {
	return func(c *clientConfig) {
		c.app = app
	}
}

// WithTimeout sets the request timeout. Zero means no timeout.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. The local
// splunkd management port uses a self-signed certificate by default.
func WithInsecureSkipVerify() ClientOption {
	return func(c *clientConfig) {
		c.insecureSkipVerify = true
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// NewClient creates a Splunk management client.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
		owner:   DefaultOwner,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if cfg.sessionKey == "" {
		return nil, ErrNoSessionKey
	}
	if cfg.app == "" {
		return nil, ErrNoApp
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.baseURL, "/"),
		sessionKey: cfg.sessionKey,
		owner:      cfg.owner,
		app:        cfg.app,
		transport: transport.New(transport.Config{
			Timeout:            cfg.timeout,
			InsecureSkipVerify: cfg.insecureSkipVerify,
			HTTPClient:         cfg.httpClient,
			UserAgent:          cfg.userAgent,
		}),
	}, nil
}

// url builds a namespaced endpoint path,
// /servicesNS/{owner}/{app}/{resource...}.
func (c *Client) url(resource ...string) string {
	parts := append([]string{"servicesNS", c.owner, c.app}, resource...)
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// authHeader returns the session-key bearer header Splunk expects.
func (c *Client) authHeader() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Splunk "+c.sessionKey)
	return h
}
