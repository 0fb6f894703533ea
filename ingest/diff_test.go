package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-panw/ingest"
	"github.com/tphakala/go-panw/splunk"
)

func TestDiff(t *testing.T) {
	remote := []splunk.Record{
		{"indicator": "10.0.0.1", "label": "blocklist"},
		{"indicator": "10.0.0.2", "label": "blocklist"},
	}

	t.Run("empty store is new", func(t *testing.T) {
		assert.Equal(t, ingest.OutcomeNew, ingest.Diff(remote, nil))
		assert.Equal(t, ingest.OutcomeNew, ingest.Diff(nil, nil))
	})

	t.Run("exact match is unchanged", func(t *testing.T) {
		stored := []splunk.Record{
			{"indicator": "10.0.0.2", "label": "blocklist"},
			{"indicator": "10.0.0.1", "label": "blocklist"},
		}
		assert.Equal(t, ingest.OutcomeUnchanged, ingest.Diff(remote, stored))
	})

	t.Run("store metadata and timestamps excluded from comparison", func(t *testing.T) {
		stored := []splunk.Record{
			{"indicator": "10.0.0.1", "label": "blocklist", "_key": "k1", "_user": "nobody", "last_updated": int64(1756380000)},
			{"indicator": "10.0.0.2", "label": "blocklist", "_key": "k2", "last_updated": int64(1756380000)},
		}
		assert.Equal(t, ingest.OutcomeUnchanged, ingest.Diff(remote, stored))
	})

	t.Run("count mismatch is changed", func(t *testing.T) {
		assert.Equal(t, ingest.OutcomeChanged, ingest.Diff(remote, remote[:1]))
		assert.Equal(t, ingest.OutcomeChanged, ingest.Diff(remote[:1], remote))
		assert.Equal(t, ingest.OutcomeChanged, ingest.Diff(nil, remote))
	})

	t.Run("field difference is changed", func(t *testing.T) {
		stored := []splunk.Record{
			{"indicator": "10.0.0.1", "label": "blocklist"},
			{"indicator": "10.0.0.9", "label": "blocklist"},
		}
		assert.Equal(t, ingest.OutcomeChanged, ingest.Diff(remote, stored))
	})

	t.Run("duplicates match one for one", func(t *testing.T) {
		dup := []splunk.Record{
			{"indicator": "10.0.0.1"},
			{"indicator": "10.0.0.1"},
		}
		mixed := []splunk.Record{
			{"indicator": "10.0.0.1"},
			{"indicator": "10.0.0.2"},
		}
		assert.Equal(t, ingest.OutcomeUnchanged, ingest.Diff(dup, dup))
		assert.Equal(t, ingest.OutcomeChanged, ingest.Diff(dup, mixed))
	})
}
