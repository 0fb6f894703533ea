package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tphakala/go-panw/splunk"
)

// EventWriter emits records as JSON lines on an output stream, the format
// Splunk indexes from a scripted input's stdout. Writes are serialized so
// concurrent inputs sharing a pipe produce whole lines.
type EventWriter struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewEventWriter creates an event writer on w, typically os.Stdout.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{w: w, enc: json.NewEncoder(w)}
}

// Write emits one record annotated with event metadata. The record itself
// is not modified.
func (ew *EventWriter) Write(record splunk.Record, label, runID string, at time.Time) error {
	event := make(map[string]any, len(record)+3)
	for k, v := range record {
		event[k] = v
	}
	event["label"] = label
	event["run_id"] = runID
	event["time"] = at.Unix()

	ew.mu.Lock()
	defer ew.mu.Unlock()
	if err := ew.enc.Encode(event); err != nil {
		return fmt.Errorf("ingest: writing event: %w", err)
	}
	return nil
}
