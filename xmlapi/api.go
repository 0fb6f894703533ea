package xmlapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

// Keygen generates an API key from the configured credentials and stores it
// on the client for subsequent calls.
func (c *Client) Keygen(ctx context.Context) (string, error) {
	if c.username == "" || c.password == "" {
		return "", &panw.ConfigError{Message: "keygen requires username and password"}
	}

	form := url.Values{}
	form.Set("type", "keygen")
	form.Set("user", c.username)
	form.Set("password", c.password)

	resp, err := c.do(ctx, form)
	if err != nil {
		return "", err
	}

	var result struct {
		Key string `xml:"key"`
	}
	if err := resp.Result.Unmarshal(&result); err != nil {
		return "", fmt.Errorf("xmlapi: parsing keygen result: %w", err)
	}
	if result.Key == "" {
		return "", &panw.ConfigError{Message: "keygen returned an empty key"}
	}

	c.apiKey = result.Key
	return result.Key, nil
}

// Op runs an operational command, e.g. "<show><system><info/></system></show>".
// An optional vsys scopes the command.
func (c *Client) Op(ctx context.Context, cmd string, vsys ...string) (*Response, error) {
	if cmd == "" {
		return nil, &panw.ValidationError{Field: "cmd", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("type", "op")
	form.Set("cmd", cmd)
	if len(vsys) > 0 && vsys[0] != "" {
		form.Set("vsys", vsys[0])
	}

	return c.do(ctx, form)
}

// ConfigGet retrieves candidate configuration at xpath (action=get).
func (c *Client) ConfigGet(ctx context.Context, xpath string) (*Response, error) {
	return c.configAction(ctx, "get", xpath, "")
}

// ConfigShow retrieves active configuration at xpath (action=show).
func (c *Client) ConfigShow(ctx context.Context, xpath string) (*Response, error) {
	return c.configAction(ctx, "show", xpath, "")
}

// ConfigSet creates or merges element under the container at xpath
// (action=set). Set targets a container, not an entry: callers addressing a
// named entry pass the parent xpath.
func (c *Client) ConfigSet(ctx context.Context, xpath, element string) (*Response, error) {
	if element == "" {
		return nil, &panw.ValidationError{Field: "element", Message: "cannot be empty"}
	}
	return c.configAction(ctx, "set", xpath, element)
}

// ConfigEdit replaces the node at xpath with element (action=edit).
func (c *Client) ConfigEdit(ctx context.Context, xpath, element string) (*Response, error) {
	if element == "" {
		return nil, &panw.ValidationError{Field: "element", Message: "cannot be empty"}
	}
	return c.configAction(ctx, "edit", xpath, element)
}

// ConfigDelete removes the node at xpath (action=delete).
func (c *Client) ConfigDelete(ctx context.Context, xpath string) (*Response, error) {
	return c.configAction(ctx, "delete", xpath, "")
}

func (c *Client) configAction(ctx context.Context, action, xpath, element string) (*Response, error) {
	if xpath == "" {
		return nil, &panw.ValidationError{Field: "xpath", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("type", "config")
	form.Set("action", action)
	form.Set("xpath", xpath)
	if element != "" {
		form.Set("element", element)
	}

	return c.do(ctx, form)
}

// CommitOptions configures a commit operation.
type CommitOptions struct {
	// Force pushes the commit even when validation warns.
	Force bool

	// Partial limits the commit to the named admin's changes.
	Admin string

	// Description annotates the commit in the job log.
	Description string
}

// Commit commits the candidate configuration and returns the job ID. A
// commit with nothing to do returns an empty job ID; PAN-OS reports that
// case with code 19 and no <job> element.
func (c *Client) Commit(ctx context.Context, opts *CommitOptions) (string, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	cmd := "<commit>"
	if opts.Description != "" {
		cmd += "<description>" + xmlEscape(opts.Description) + "</description>"
	}
	if opts.Force {
		cmd += "<force/>"
	}
	if opts.Admin != "" {
		cmd += "<partial><admin><member>" + xmlEscape(opts.Admin) + "</member></admin></partial>"
	}
	cmd += "</commit>"

	form := url.Values{}
	form.Set("type", "commit")
	form.Set("cmd", cmd)

	resp, err := c.do(ctx, form)
	if err != nil {
		return "", err
	}

	var result struct {
		Job string `xml:"job"`
	}
	if err := resp.Result.Unmarshal(&result); err != nil {
		return "", fmt.Errorf("xmlapi: parsing commit result: %w", err)
	}
	return result.Job, nil
}

// Job describes the state of an asynchronous device job.
type Job struct {
	ID       string `xml:"id"`
	Type     string `xml:"type"`
	Status   string `xml:"status"` // ACT, PEND, FIN
	Result   string `xml:"result"` // OK, FAIL
	Progress string `xml:"progress"`
}

// Done reports whether the job has finished.
func (j *Job) Done() bool {
	return j.Status == "FIN"
}

// ShowJob returns the state of the job with the given ID.
func (c *Client) ShowJob(ctx context.Context, jobID string) (*Job, error) {
	if jobID == "" {
		return nil, &panw.ValidationError{Field: "jobID", Message: "cannot be empty"}
	}

	cmd := "<show><jobs><id>" + xmlEscape(jobID) + "</id></jobs></show>"
	resp, err := c.Op(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var result struct {
		Job Job `xml:"job"`
	}
	if err := resp.Result.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("xmlapi: parsing job result: %w", err)
	}
	return &result.Job, nil
}

// WaitJob polls the job until it finishes or ctx is cancelled. interval
// defaults to two seconds when non-positive.
func (c *Client) WaitJob(ctx context.Context, jobID string, interval time.Duration) (*Job, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.ShowJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Done() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Export downloads a device file (type=export), e.g. category
// "certificate" or "device-state". The raw result is returned because
// export bodies are arbitrary binary or PEM data, not XML envelopes.
func (c *Client) Export(ctx context.Context, category string, params url.Values) (*panw.APIResult, error) {
	if category == "" {
		return nil, &panw.ValidationError{Field: "category", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("type", "export")
	form.Set("category", category)
	form.Set("key", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.endpoint(),
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
