// Package xmlapi provides a client for the PAN-OS XML API exposed by
// firewalls and Panorama.
package xmlapi

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

const defaultTimeout = 30 * time.Second

// Client is a PAN-OS XML API client bound to one firewall or Panorama
// management address.
type Client struct {
	hostname string
	port     string
	apiKey   string
	username string
	password string

	transport *transport.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	hostname           string
	port               string
	apiKey             string
	username           string
	password           string
	panrcTag           string
	panrcPaths         []string
	timeout            time.Duration
	insecureSkipVerify bool
	httpClient         *http.Client
	userAgent          string
}

// WithHostname sets the device management hostname or IP.
func WithHostname(hostname string) ClientOption {
	return func(c *clientConfig) {
		c.hostname = hostname
	}
}

// WithPort sets a non-default management port.
func WithPort(port string) ClientOption {
	return func(c *clientConfig) {
		c.port = port
	}
}

// WithAPIKey sets the XML API key.
func WithAPIKey(key string) ClientOption {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithCredentials sets the administrative username and password, used by
// Keygen to generate an API key when none is configured.
func WithCredentials(username, password string) ClientOption {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
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

// WithInsecureSkipVerify disables TLS certificate verification. Common for
// devices with self-signed management certificates.
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

// NewClient creates an XML API client. The hostname and API key resolve by
// precedence: explicit option, .panrc entry, environment variable. A client
// without an API key is only valid when credentials are supplied for Keygen.
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

	hostname := panw.Resolve(cfg.hostname, rc.Hostname, panw.EnvHostname)
	if hostname == "" {
		return nil, panw.ErrNoHostname
	}

	apiKey := panw.Resolve(cfg.apiKey, rc.APIKey, panw.EnvAPIKey)
	username := panw.Resolve(cfg.username, rc.Username, panw.EnvUsername)
	password := panw.Resolve(cfg.password, rc.Password, panw.EnvPassword)

	if apiKey == "" && username == "" {
		return nil, panw.ErrNoAPIKey
	}

	port := cfg.port
	if port == "" {
		port = rc.Port
	}

	return &Client{
		hostname: hostname,
		port:     port,
		apiKey:   apiKey,
		username: username,
		password: password,
		transport: transport.New(transport.Config{
			Timeout:            cfg.timeout,
			InsecureSkipVerify: cfg.insecureSkipVerify,
			HTTPClient:         cfg.httpClient,
			UserAgent:          cfg.userAgent,
		}),
	}, nil
}

// Hostname returns the configured management hostname.
func (c *Client) Hostname() string {
	return c.hostname
}

// endpoint returns the XML API endpoint URL.
func (c *Client) endpoint() string {
	host := c.hostname
	if c.port != "" {
		host = net.JoinHostPort(c.hostname, c.port)
	}
	return "https://" + host + "/api/"
}

// do form-posts an XML API request and parses the response envelope. The
// API key is merged in unless the form already carries auth fields.
func (c *Client) do(ctx context.Context, form url.Values) (*Response, error) {
	if form.Get("key") == "" && c.apiKey != "" {
		form.Set("key", c.apiKey)
	}

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.endpoint(),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(result)
}
