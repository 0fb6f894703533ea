package ingest_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw/ingest"
	"github.com/tphakala/go-panw/splunk"
)

func TestEventWriter(t *testing.T) {
	t.Run("emits one JSON line per record", func(t *testing.T) {
		var buf bytes.Buffer
		ew := ingest.NewEventWriter(&buf)
		at := time.Unix(1756380000, 0)

		require.NoError(t, ew.Write(splunk.Record{"indicator": "10.0.0.1"}, "blocklist", "run-1", at))
		require.NoError(t, ew.Write(splunk.Record{"indicator": "10.0.0.2"}, "blocklist", "run-1", at))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)

		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
		assert.Equal(t, "10.0.0.1", event["indicator"])
		assert.Equal(t, "blocklist", event["label"])
		assert.Equal(t, "run-1", event["run_id"])
		assert.EqualValues(t, 1756380000, event["time"])
	})

	t.Run("does not modify the record", func(t *testing.T) {
		var buf bytes.Buffer
		ew := ingest.NewEventWriter(&buf)

		record := splunk.Record{"indicator": "10.0.0.1"}
		require.NoError(t, ew.Write(record, "blocklist", "run-1", time.Now()))
		assert.Equal(t, splunk.Record{"indicator": "10.0.0.1"}, record)
	})
}
