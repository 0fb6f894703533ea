// Package autofocus provides a client for the Palo Alto Networks AutoFocus
// threat intelligence API.
package autofocus

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

const (
	// DefaultHostname is the AutoFocus cloud endpoint.
	DefaultHostname = "autofocus.paloaltonetworks.com"

	// EnvAPIKey supplies the AutoFocus API key when no option or .panrc
	// entry does.
	EnvAPIKey = "PAN_AUTOFOCUS_API_KEY"

	defaultTimeout = 60 * time.Second
)

// Client is an AutoFocus API client.
type Client struct {
	hostname  string
	apiKey    string
	transport *transport.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	hostname           string
	apiKey             string
	panrcTag           string
	panrcPaths         []string
	timeout            time.Duration
	insecureSkipVerify bool
	httpClient         *http.Client
	userAgent          string
}

// WithHostname overrides the AutoFocus cloud hostname.
func WithHostname(hostname string) ClientOption {
	return func(c *clientConfig) {
		c.hostname = hostname
	}
}

// WithAPIKey sets the AutoFocus API key.
func WithAPIKey(key string) ClientOption {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithPanrcTag selects tagged entries (key%tag=value) from .panrc files.
func WithPanrcTag(tag string) ClientOption {
	return func(c *clientConfig) {
		c.panrcTag = tag
	}
}

// WithPanrcPaths overrides the .panrc search path order.
func WithPanrcPaths(paths ...string) ClientOption {
	return func(c *clientConfig) {
		c.panrcPaths = paths
	}
}

// WithTimeout sets the request timeout. Zero means no timeout.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
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

// NewClient creates an AutoFocus client. The API key resolves by
// precedence: explicit option, .panrc api_key entry, PAN_AUTOFOCUS_API_KEY.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rc, err := panw.LoadPanrc(cfg.panrcTag, cfg.panrcPaths...)
	if err != nil {
		return nil, err
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = rc.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, panw.ErrNoAPIKey
	}

	hostname := cfg.hostname
	if hostname == "" {
		hostname = DefaultHostname
	}

	return &Client{
		hostname: hostname,
		apiKey:   apiKey,
		transport: transport.New(transport.Config{
			Timeout:            cfg.timeout,
			InsecureSkipVerify: cfg.insecureSkipVerify,
			HTTPClient:         cfg.httpClient,
			UserAgent:          cfg.userAgent,
		}),
	}, nil
}

// Hostname returns the configured cloud hostname.
func (c *Client) Hostname() string {
	return c.hostname
}

func (c *Client) url(path string) string {
	return "https://" + c.hostname + "/api/v1.0" + path
}

// post sends a JSON body with the apiKey field merged in and returns the
// result after an explicit status check.
func (c *Client) post(ctx context.Context, path string, body map[string]any) (*panw.APIResult, error) {
	if body == nil {
		body = make(map[string]any)
	}
	body["apiKey"] = c.apiKey

	result, err := c.transport.Do(ctx, &transport.Request{
		Method:   http.MethodPost,
		URL:      c.url(path),
		JSONBody: body,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
