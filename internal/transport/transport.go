// Package transport provides the low-level HTTP layer shared by all vendor
// API clients.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/go-panw"
)

const defaultMaxBodySize = 32 * 1024 * 1024 // 32MB, WildFire samples can be large

// Config controls transport construction.
type Config struct {
	// Timeout bounds each request from connection to body read. Zero means
	// no timeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate and hostname checks.
	// Firewalls commonly ship with self-signed management certificates.
	InsecureSkipVerify bool

	// HTTPClient, when set, is used as-is and Timeout/InsecureSkipVerify
	// are ignored.
	HTTPClient *http.Client

	UserAgent string
}

// Client issues HTTP requests and normalizes responses into panw.APIResult.
// Non-2xx statuses are captured in the result, never raised; only transport
// failures (connection, timeout, TLS) return an error.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a transport client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
		if cfg.InsecureSkipVerify {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- caller opted out
			}
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "go-panw/1.0"
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  ua,
	}
}

// Request describes one HTTP exchange. At most one of JSONBody, Form and
// Body may be set.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header

	// JSONBody is marshaled and sent as application/json.
	JSONBody any

	// Form is sent as application/x-www-form-urlencoded.
	Form url.Values

	// Body is sent verbatim; set ContentType alongside it.
	Body        io.Reader
	ContentType string
}

// Do executes req and returns the normalized result. The status code is
// captured regardless of its value; use APIResult.Err for an explicit
// status check.
func (c *Client) Do(ctx context.Context, req *Request) (*panw.APIResult, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &panw.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, req.URL),
			Err: err,
		}
	}
	defer func() { _ = httpResp.Body.Close() }()

	limited := io.LimitReader(httpResp.Body, defaultMaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, &panw.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, req.URL),
			Err: fmt.Errorf("reading response body: %w", err),
		}
	}
	if int64(len(body)) > defaultMaxBodySize {
		return nil, &panw.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, req.URL),
			Err: fmt.Errorf("response exceeds %d bytes", defaultMaxBodySize),
		}
	}

	return &panw.APIResult{
		StatusCode: httpResp.StatusCode,
		Reason:     reasonPhrase(httpResp.Status, httpResp.StatusCode),
		Header:     httpResp.Header,
		Body:       body,
		Elapsed:    time.Since(start),
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + req.Query.Encode()
	}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case req.JSONBody != nil:
		data, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		bodyReader = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		bodyReader = req.Body
		contentType = req.ContentType
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	return httpReq, nil
}

// reasonPhrase strips the numeric code prefix from an HTTP status line,
// e.g. "404 Not Found" -> "Not Found".
func reasonPhrase(status string, code int) string {
	prefix := fmt.Sprintf("%d ", code)
	if strings.HasPrefix(status, prefix) {
		return status[len(prefix):]
	}
	return status
}
