package splunk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

// TimestampField is the record field stamped by Create and BatchCreate
// when a timestamp is supplied.
const TimestampField = "last_updated"

// Record is one KV store document. Fields prefixed with "_" are store
// metadata (_key, _user) maintained by Splunk.
type Record map[string]any

// Key returns the record's _key, or "".
func (r Record) Key() string {
	if k, ok := r["_key"].(string); ok {
		return k
	}
	return ""
}

// StripInternal returns a copy of the record without store-internal
// fields. Diffing compares records in this form.
func (r Record) StripInternal() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

// Collection provides CRUD and query operations on one KV store
// collection. Every read re-queries the store; nothing is cached locally.
type Collection struct {
	client *Client
	name   string
}

// Collection returns a handle on the named KV store collection.
func (c *Client) Collection(name string) *Collection {
	return &Collection{client: c, name: name}
}

// Name returns the collection name.
func (col *Collection) Name() string {
	return col.name
}

func (col *Collection) dataURL(key string) string {
	resource := []string{"storage", "collections", "data", col.name}
	if key != "" {
		resource = append(resource, key)
	}
	return col.client.url(resource...)
}

// Create inserts a single record and returns its key. A non-empty key is
// set as the record's _key; otherwise the store assigns one. A non-zero
// timestamp is stamped into the record's last_updated field as epoch
// seconds.
func (col *Collection) Create(ctx context.Context, record Record, key string, timestamp time.Time) (string, error) {
	if record == nil {
		return "", &panw.ValidationError{Field: "record", Message: "cannot be nil"}
	}

	body := make(Record, len(record)+2)
	for k, v := range record {
		body[k] = v
	}
	if key != "" {
		body["_key"] = key
	}
	if !timestamp.IsZero() {
		body[TimestampField] = timestamp.Unix()
	}

	result, err := col.do(ctx, http.MethodPost, col.dataURL(""), nil, body)
	if err != nil {
		return "", err
	}

	var created struct {
		Key string `json:"_key"`
	}
	if err := result.JSON(&created); err != nil {
		return "", fmt.Errorf("splunk: parsing create response: %w", err)
	}
	return created.Key, nil
}

// Get returns the record with the given key.
func (col *Collection) Get(ctx context.Context, key string) (Record, error) {
	if key == "" {
		return nil, &panw.ValidationError{Field: "key", Message: "cannot be empty"}
	}

	result, err := col.do(ctx, http.MethodGet, col.dataURL(key), nil, nil)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := result.JSON(&record); err != nil {
		return nil, fmt.Errorf("splunk: parsing record: %w", err)
	}
	return record, nil
}

// GetAll returns every record in the collection.
func (col *Collection) GetAll(ctx context.Context) ([]Record, error) {
	return col.fetch(ctx, nil)
}

// Delete removes the record with the given key.
func (col *Collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return &panw.ValidationError{Field: "key", Message: "cannot be empty"}
	}
	_, err := col.do(ctx, http.MethodDelete, col.dataURL(key), nil, nil)
	return err
}

// DeleteAll removes every record in the collection.
func (col *Collection) DeleteAll(ctx context.Context) error {
	_, err := col.do(ctx, http.MethodDelete, col.dataURL(""), nil, nil)
	return err
}

// Query returns records matching the JSON filter, e.g.
// Record{"label": "my-export"}. With deleteMatching set, matching records
// are deleted instead and no records are returned.
func (col *Collection) Query(ctx context.Context, filter Record, deleteMatching bool) ([]Record, error) {
	query := url.Values{}
	if len(filter) > 0 {
		encoded, err := encodeFilter(filter)
		if err != nil {
			return nil, err
		}
		query.Set("query", encoded)
	}

	if deleteMatching {
		_, err := col.do(ctx, http.MethodDelete, col.dataURL(""), query, nil)
		return nil, err
	}
	return col.fetch(ctx, query)
}

// QueryOptions parameterizes AdvancedQuery. Fields accepts either a
// comma-separated string (passed through unchanged) or a []string (joined
// with commas); Limit and Skip accept any numeric value. Anything else
// fails validation before a request is made.
type QueryOptions struct {
	Filter Record
	Fields any
	Limit  any
	Skip   any
	Sort   string
}

// AdvancedQuery returns records matching the filter with field projection,
// paging and sorting applied server-side.
func (col *Collection) AdvancedQuery(ctx context.Context, opts *QueryOptions) ([]Record, error) {
	if opts == nil {
		opts = &QueryOptions{}
	}

	query := url.Values{}
	if len(opts.Filter) > 0 {
		encoded, err := encodeFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		query.Set("query", encoded)
	}

	if opts.Fields != nil {
		fields, err := encodeFields(opts.Fields)
		if err != nil {
			return nil, err
		}
		query.Set("fields", fields)
	}
	if opts.Limit != nil {
		n, err := encodeCount("limit", opts.Limit)
		if err != nil {
			return nil, err
		}
		query.Set("limit", n)
	}
	if opts.Skip != nil {
		n, err := encodeCount("skip", opts.Skip)
		if err != nil {
			return nil, err
		}
		query.Set("skip", n)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}

	return col.fetch(ctx, query)
}

// BatchCreate inserts records in one call and returns their keys. Records
// without a _key are assigned a generated UUID so callers can correlate
// results. A non-zero timestamp stamps every record uniformly.
func (col *Collection) BatchCreate(ctx context.Context, records []Record, timestamp time.Time) ([]string, error) {
	if len(records) == 0 {
		return nil, &panw.ValidationError{Field: "records", Message: "cannot be empty"}
	}

	body := make([]Record, len(records))
	for i, record := range records {
		out := make(Record, len(record)+2)
		for k, v := range record {
			out[k] = v
		}
		if out.Key() == "" {
			out["_key"] = uuid.NewString()
		}
		if !timestamp.IsZero() {
			out[TimestampField] = timestamp.Unix()
		}
		body[i] = out
	}

	result, err := col.do(ctx, http.MethodPost, col.client.url("storage", "collections", "data", col.name, "batch_save"), nil, body)
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := result.JSON(&keys); err != nil {
		return nil, fmt.Errorf("splunk: parsing batch response: %w", err)
	}
	return keys, nil
}

func (col *Collection) fetch(ctx context.Context, query url.Values) ([]Record, error) {
	result, err := col.do(ctx, http.MethodGet, col.dataURL(""), query, nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := result.JSON(&records); err != nil {
		return nil, fmt.Errorf("splunk: parsing records: %w", err)
	}
	return records, nil
}

func (col *Collection) do(ctx context.Context, method, endpoint string, query url.Values, body any) (*panw.APIResult, error) {
	req := &transport.Request{
		Method: method,
		URL:    endpoint,
		Query:  query,
		Header: col.client.authHeader(),
	}
	if body != nil {
		req.JSONBody = body
	}

	result, err := col.client.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func encodeFilter(filter Record) (string, error) {
	data, err := json.Marshal(filter)
	if err != nil {
		return "", &panw.ValidationError{Field: "filter", Message: err.Error()}
	}
	return string(data), nil
}

// encodeFields normalizes the fields parameter: strings pass through,
// string slices join with commas, anything else is rejected.
func encodeFields(fields any) (string, error) {
	switch v := fields.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ","), nil
	default:
		return "", &panw.ValidationError{
			Field:   "fields",
			Message: fmt.Sprintf("must be string or []string, got %T", fields),
		}
	}
}

// encodeCount normalizes limit/skip values, rejecting non-numeric input.
func encodeCount(name string, value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v != float64(int64(v)) {
			return "", &panw.ValidationError{Field: name, Message: "must be a whole number"}
		}
		return strconv.FormatInt(int64(v), 10), nil
	case string:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "", &panw.ValidationError{Field: name, Message: "must be numeric"}
		}
		return v, nil
	default:
		return "", &panw.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("must be numeric, got %T", value),
		}
	}
}
