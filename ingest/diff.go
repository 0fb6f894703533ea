// Package ingest pulls telemetry from vendor cloud APIs and lands it in
// Splunk: KV store state plus events on the input's stdout pipe.
package ingest

import (
	"reflect"

	"github.com/tphakala/go-panw/splunk"
)

// Outcome is the result of comparing a remote export against stored state.
type Outcome string

const (
	// OutcomeNew means no stored records exist for the label yet.
	OutcomeNew Outcome = "new"

	// OutcomeChanged means counts differ or at least one remote record
	// has no exact stored match. The stored set is stale and gets
	// replaced wholesale.
	OutcomeChanged Outcome = "changed"

	// OutcomeUnchanged means every remote record matches stored state.
	OutcomeUnchanged Outcome = "unchanged"
)

// Diff compares a remote export list against the locally stored records
// for the same label. Store-internal fields (underscore-prefixed) and the
// stamped timestamp are excluded from comparison. Duplicate records are
// matched one-for-one: two identical remote records need two identical
// stored records.
func Diff(remote, stored []splunk.Record) Outcome {
	if len(stored) == 0 {
		return OutcomeNew
	}
	if len(remote) != len(stored) {
		return OutcomeChanged
	}

	candidates := make([]splunk.Record, len(stored))
	for i, rec := range stored {
		candidates[i] = normalize(rec)
	}

	used := make([]bool, len(candidates))
	for _, rec := range remote {
		want := normalize(rec)
		found := false
		for i, have := range candidates {
			if used[i] {
				continue
			}
			if reflect.DeepEqual(want, have) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return OutcomeChanged
		}
	}
	return OutcomeUnchanged
}

// normalize strips the fields that differ between an export fetch and a
// stored copy of the same record.
func normalize(rec splunk.Record) splunk.Record {
	out := rec.StripInternal()
	delete(out, splunk.TimestampField)
	return out
}
