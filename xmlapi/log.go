package xmlapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/go-panw"
)

// LogQuery parameterizes a log retrieval job.
type LogQuery struct {
	// LogType selects the log, e.g. "traffic", "threat", "system".
	LogType string

	// Query is a PAN-OS log filter expression.
	Query string

	// NLogs bounds the number of entries returned; zero uses the device
	// default.
	NLogs int

	// Skip offsets into the result set.
	Skip int
}

// LogEntry is one log record. Fields vary per log type, so the full record
// is retained as raw XML alongside the common attributes.
type LogEntry struct {
	LogID string `xml:"logid,attr"`
	Raw   []byte `xml:",innerxml"`
}

// Field returns the text of a named child element of the entry, or "".
func (e *LogEntry) Field(name string) string {
	dec := xml.NewDecoder(strings.NewReader("<entry>" + string(e.Raw) + "</entry>"))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 && t.Name.Local == name {
				var text string
				if dec.DecodeElement(&text, &t) == nil {
					return text
				}
				return ""
			}
		case xml.EndElement:
			depth--
		}
	}
}

// LogJob is the state of a queued log retrieval job.
type LogJob struct {
	ID      string
	Status  string // ACT, FIN
	Entries []LogEntry
}

// Done reports whether the log job has finished.
func (j *LogJob) Done() bool {
	return j.Status == "FIN"
}

// Log queues a log retrieval job and returns its ID. Retrieval on PAN-OS is
// asynchronous: queue with Log, then poll with LogGet or LogWait.
func (c *Client) Log(ctx context.Context, q *LogQuery) (string, error) {
	if q == nil || q.LogType == "" {
		return "", &panw.ValidationError{Field: "LogType", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("type", "log")
	form.Set("log-type", q.LogType)
	if q.Query != "" {
		form.Set("query", q.Query)
	}
	if q.NLogs > 0 {
		form.Set("nlogs", strconv.Itoa(q.NLogs))
	}
	if q.Skip > 0 {
		form.Set("skip", strconv.Itoa(q.Skip))
	}

	resp, err := c.do(ctx, form)
	if err != nil {
		return "", err
	}

	var result struct {
		Job string `xml:"job"`
	}
	if err := resp.Result.Unmarshal(&result); err != nil {
		return "", fmt.Errorf("xmlapi: parsing log job result: %w", err)
	}
	if result.Job == "" {
		return "", &panw.StatusError{
			StatusCode: resp.Raw.StatusCode,
			Message:    "log query did not return a job ID",
		}
	}
	return result.Job, nil
}

// LogGet returns the current state of a log job, including any entries
// retrieved so far.
func (c *Client) LogGet(ctx context.Context, jobID string) (*LogJob, error) {
	if jobID == "" {
		return nil, &panw.ValidationError{Field: "jobID", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("type", "log")
	form.Set("action", "get")
	form.Set("job-id", jobID)

	resp, err := c.do(ctx, form)
	if err != nil {
		return nil, err
	}

	var result struct {
		Job struct {
			ID     string `xml:"id"`
			Status string `xml:"status"`
		} `xml:"job"`
		Log struct {
			Entries []LogEntry `xml:"logs>entry"`
		} `xml:"log"`
	}
	if err := resp.Result.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("xmlapi: parsing log result: %w", err)
	}

	id := result.Job.ID
	if id == "" {
		id = jobID
	}
	return &LogJob{
		ID:      id,
		Status:  result.Job.Status,
		Entries: result.Log.Entries,
	}, nil
}

// LogWait polls a log job until it finishes or ctx is cancelled, then
// returns the finished job. interval defaults to two seconds when
// non-positive.
func (c *Client) LogWait(ctx context.Context, jobID string, interval time.Duration) (*LogJob, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.LogGet(ctx, jobID)
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

// xmlEscape escapes text for embedding in an XML command body.
func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
