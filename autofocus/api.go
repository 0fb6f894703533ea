package autofocus

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/tphakala/go-panw"
)

// SearchRequest parameterizes a samples or sessions search.
type SearchRequest struct {
	// Query is an AutoFocus query in its JSON filter syntax.
	Query string `json:"query"`

	// Size bounds the number of hits per result fetch (max 4000).
	Size int `json:"size,omitempty"`

	// From offsets into the result set.
	From int `json:"from,omitempty"`

	// Sort orders results, e.g. "create_date".
	Sort string `json:"sort,omitempty"`

	// Scope selects "public", "private" or "global" sample visibility.
	Scope string `json:"scope,omitempty"`
}

// Hit is one search result record.
type Hit struct {
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
}

// SearchResults is one poll of an asynchronous search.
type SearchResults struct {
	Cookie     string
	Hits       []Hit `json:"hits"`
	Total      int   `json:"total"`
	Percentage int   `json:"af_complete_percentage"`

	// BucketInfo reports remaining API quota.
	BucketInfo BucketInfo `json:"bucket_info"`
}

// Complete reports whether the search has finished on the server.
func (r *SearchResults) Complete() bool {
	return r.Percentage >= 100
}

// BucketInfo is the API usage quota attached to most responses.
type BucketInfo struct {
	Minute        int `json:"minute_points"`
	MinuteRemain  int `json:"minute_points_remaining"`
	Daily         int `json:"daily_points"`
	DailyRemain   int `json:"daily_points_remaining"`
	WaitInSeconds int `json:"wait_in_seconds"`
}

// SamplesSearch starts an asynchronous samples search and returns the
// af_cookie used to poll for results.
func (c *Client) SamplesSearch(ctx context.Context, req *SearchRequest) (string, error) {
	return c.startSearch(ctx, "/samples/search", req)
}

// SessionsSearch starts an asynchronous sessions search and returns the
// af_cookie used to poll for results.
func (c *Client) SessionsSearch(ctx context.Context, req *SearchRequest) (string, error) {
	return c.startSearch(ctx, "/sessions/search", req)
}

func (c *Client) startSearch(ctx context.Context, path string, req *SearchRequest) (string, error) {
	if req == nil || req.Query == "" {
		return "", &panw.ValidationError{Field: "Query", Message: "cannot be empty"}
	}

	body := map[string]any{"query": req.Query}
	if req.Size > 0 {
		body["size"] = req.Size
	}
	if req.From > 0 {
		body["from"] = req.From
	}
	if req.Sort != "" {
		body["sort"] = req.Sort
	}
	if req.Scope != "" {
		body["scope"] = req.Scope
	}

	result, err := c.post(ctx, path, body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Cookie string `json:"af_cookie"`
	}
	if err := result.JSON(&parsed); err != nil {
		return "", fmt.Errorf("autofocus: parsing search response: %w", err)
	}
	if parsed.Cookie == "" {
		return "", &panw.StatusError{
			StatusCode: result.StatusCode,
			Message:    "search did not return an af_cookie",
		}
	}
	return parsed.Cookie, nil
}

// SamplesResults polls a samples search by cookie.
func (c *Client) SamplesResults(ctx context.Context, cookie string) (*SearchResults, error) {
	return c.results(ctx, "/samples/results/", cookie)
}

// SessionsResults polls a sessions search by cookie.
func (c *Client) SessionsResults(ctx context.Context, cookie string) (*SearchResults, error) {
	return c.results(ctx, "/sessions/results/", cookie)
}

func (c *Client) results(ctx context.Context, path, cookie string) (*SearchResults, error) {
	if cookie == "" {
		return nil, &panw.ValidationError{Field: "cookie", Message: "cannot be empty"}
	}

	result, err := c.post(ctx, path+cookie, nil)
	if err != nil {
		return nil, err
	}

	parsed := &SearchResults{Cookie: cookie}
	if err := result.JSON(parsed); err != nil {
		return nil, fmt.Errorf("autofocus: parsing results response: %w", err)
	}
	return parsed, nil
}

// SearchSamples runs a samples search end to end, polling until the server
// reports completion, and yields each hit. Intended for use with the
// iterator helpers in package panw:
//
//	hits, err := panw.Collect(client.SearchSamples(ctx, req, 0))
//
// interval defaults to five seconds when non-positive.
func (c *Client) SearchSamples(ctx context.Context, req *SearchRequest, interval time.Duration) iter.Seq2[Hit, error] {
	return c.searchIter(ctx, req, interval, c.SamplesSearch, c.SamplesResults)
}

// SearchSessions is SearchSamples for session records.
func (c *Client) SearchSessions(ctx context.Context, req *SearchRequest, interval time.Duration) iter.Seq2[Hit, error] {
	return c.searchIter(ctx, req, interval, c.SessionsSearch, c.SessionsResults)
}

func (c *Client) searchIter(
	ctx context.Context,
	req *SearchRequest,
	interval time.Duration,
	start func(context.Context, *SearchRequest) (string, error),
	poll func(context.Context, string) (*SearchResults, error),
) iter.Seq2[Hit, error] {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return func(yield func(Hit, error) bool) {
		cookie, err := start(ctx, req)
		if err != nil {
			yield(Hit{}, err)
			return
		}

		yielded := 0
		for {
			results, err := poll(ctx, cookie)
			if err != nil {
				yield(Hit{}, err)
				return
			}

			// Results accumulate server-side; yield only the new tail.
			for _, hit := range results.Hits[min(yielded, len(results.Hits)):] {
				if !yield(hit, nil) {
					return
				}
				yielded++
			}

			if results.Complete() {
				return
			}

			select {
			case <-ctx.Done():
				yield(Hit{}, ctx.Err())
				return
			case <-time.After(interval):
			}
		}
	}
}

// ExportList is a saved AutoFocus export, fetched by label.
type ExportList struct {
	Label   string
	Records []map[string]any `json:"export_list"`
	Bucket  BucketInfo       `json:"bucket_info"`
}

// Export fetches the export list saved under label. panosFormatted asks the
// server to render records in a PAN-OS EDL-compatible form.
func (c *Client) Export(ctx context.Context, label string, panosFormatted bool) (*ExportList, error) {
	if label == "" {
		return nil, &panw.ValidationError{Field: "label", Message: "cannot be empty"}
	}

	body := map[string]any{"label": label}
	if panosFormatted {
		body["panosFormatted"] = true
	}

	result, err := c.post(ctx, "/export", body)
	if err != nil {
		return nil, err
	}

	parsed := &ExportList{Label: label}
	if err := result.JSON(parsed); err != nil {
		return nil, fmt.Errorf("autofocus: parsing export response: %w", err)
	}
	return parsed, nil
}

// Tag describes an AutoFocus tag.
type Tag struct {
	Name        string `json:"public_tag_name"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Tags lists tags matching the optional query, most-used first.
func (c *Client) Tags(ctx context.Context, query string, pageSize int) ([]Tag, error) {
	body := map[string]any{}
	if query != "" {
		body["query"] = query
	}
	if pageSize > 0 {
		body["pageSize"] = pageSize
	}

	result, err := c.post(ctx, "/tags", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Tags []Tag `json:"tags"`
	}
	if err := result.JSON(&parsed); err != nil {
		return nil, fmt.Errorf("autofocus: parsing tags response: %w", err)
	}
	return parsed.Tags, nil
}

// GetTag returns the tag with the given public name.
func (c *Client) GetTag(ctx context.Context, name string) (*Tag, error) {
	if name == "" {
		return nil, &panw.ValidationError{Field: "name", Message: "cannot be empty"}
	}

	result, err := c.post(ctx, "/tag/"+name, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Tag Tag `json:"tag"`
	}
	if err := result.JSON(&parsed); err != nil {
		return nil, fmt.Errorf("autofocus: parsing tag response: %w", err)
	}
	return &parsed.Tag, nil
}
