// Package license provides a client for the Palo Alto Networks licensing
// API used to activate and track VM-Series capacity licenses.
package license

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

const (
	// DefaultHostname is the licensing API endpoint.
	DefaultHostname = "api.paloaltonetworks.com"

	// EnvAPIKey supplies the licensing API key when no option or .panrc
	// entry does.
	EnvAPIKey = "PAN_LICENSE_API_KEY"

	defaultTimeout = 30 * time.Second
)

// Client is a licensing API client.
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

// WithHostname overrides the licensing API hostname.
func WithHostname(hostname string) ClientOption {
	return func(c *clientConfig) {
		c.hostname = hostname
	}
}

// WithAPIKey sets the licensing API key.
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

// NewClient creates a licensing client. The API key resolves by precedence:
// explicit option, .panrc api_key entry, PAN_LICENSE_API_KEY.
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

// License is one installed or available license entry.
type License struct {
	LicenseType     string `json:"lictype"`
	Serial          string `json:"serialnum"`
	PartID          string `json:"partid"`
	Feature         string `json:"feature"`
	Expiration      string `json:"expiration"`
	AuthCode        string `json:"authcode"`
	UUID            string `json:"UUID"`
	CPUID           string `json:"CPUID"`
	KeyContents     string `json:"key"`
	TypeDescription string `json:"type"`
}

// ActivateRequest identifies the VM instance being licensed.
type ActivateRequest struct {
	AuthCode string
	UUID     string
	CPUID    string

	// SerialNumber retrieves keys for an already-activated instance
	// instead of consuming the auth code again.
	SerialNumber string
}

// Activate activates an auth code for a VM instance and returns the
// resulting license keys.
func (c *Client) Activate(ctx context.Context, req *ActivateRequest) ([]License, error) {
	if req == nil || (req.AuthCode == "" && req.SerialNumber == "") {
		return nil, &panw.ValidationError{Field: "AuthCode", Message: "authcode or serial number required"}
	}

	form := url.Values{}
	if req.AuthCode != "" {
		form.Set("authcode", req.AuthCode)
	}
	if req.UUID != "" {
		form.Set("uuid", req.UUID)
	}
	if req.CPUID != "" {
		form.Set("cpuid", req.CPUID)
	}
	if req.SerialNumber != "" {
		form.Set("serialnumber", req.SerialNumber)
	}

	result, err := c.post(ctx, "/api/license/activate", form)
	if err != nil {
		return nil, err
	}

	var licenses []License
	if err := result.JSON(&licenses); err != nil {
		return nil, fmt.Errorf("license: parsing activate response: %w", err)
	}
	return licenses, nil
}

// Deactivate releases the licenses identified by an encrypted deactivation
// token generated on the device.
func (c *Client) Deactivate(ctx context.Context, token string) (*panw.APIResult, error) {
	if token == "" {
		return nil, &panw.ValidationError{Field: "token", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("encryptedtoken", token)

	return c.post(ctx, "/api/license/deactivate", form)
}

// Get returns the licenses provisioned under an auth code.
func (c *Client) Get(ctx context.Context, authCode string) ([]License, error) {
	if authCode == "" {
		return nil, &panw.ValidationError{Field: "authCode", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("authcode", authCode)

	result, err := c.post(ctx, "/api/license/get", form)
	if err != nil {
		return nil, err
	}

	var licenses []License
	if err := result.JSON(&licenses); err != nil {
		return nil, fmt.Errorf("license: parsing get response: %w", err)
	}
	return licenses, nil
}

// post sends a form body with the apikey header and performs the explicit
// status check. The licensing API reports errors as JSON with a "message"
// field, which StatusError surfaces.
func (c *Client) post(ctx context.Context, path string, form url.Values) (*panw.APIResult, error) {
	header := make(http.Header)
	header.Set("apikey", c.apiKey)

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    "https://" + c.hostname + path,
		Header: header,
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
