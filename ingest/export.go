package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tphakala/go-panw/autofocus"
	"github.com/tphakala/go-panw/splunk"
)

// ExportInput ingests one AutoFocus export list into a KV store
// collection, replacing stored state when the remote list changed and
// emitting each record as an event.
//
// Nothing here locks the collection: Splunk may schedule the same input on
// several cluster members, and consistency is last-write-wins at the KV
// store. The diff tolerates that for this workload because exports change
// slowly relative to the polling interval.
type ExportInput struct {
	af         *autofocus.Client
	collection *splunk.Collection
	events     *EventWriter
	logger     *zap.Logger
	metrics    *Metrics
}

// ExportInputOptions wires an ExportInput's collaborators. AutoFocus,
// Collection and Events are required; Logger and Metrics default to no-ops.
type ExportInputOptions struct {
	AutoFocus  *autofocus.Client
	Collection *splunk.Collection
	Events     *EventWriter
	Logger     *zap.Logger
	Metrics    *Metrics
}

// NewExportInput creates the input from its collaborators.
func NewExportInput(opts ExportInputOptions) *ExportInput {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportInput{
		af:         opts.AutoFocus,
		collection: opts.Collection,
		events:     opts.Events,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// RunResult summarizes one ingest run.
type RunResult struct {
	RunID   string
	Label   string
	Outcome Outcome

	// Remote is the record count fetched from AutoFocus.
	Remote int

	// Emitted is the number of events written. Zero when unchanged.
	Emitted int
}

// Run ingests the export saved under label. The remote list is fetched,
// diffed against stored records for the label, and on any difference the
// stored set is deleted and reinserted wholesale before each record is
// emitted as an event. All inserted records carry the label and a uniform
// run timestamp.
func (in *ExportInput) Run(ctx context.Context, label string) (*RunResult, error) {
	runID := uuid.NewString()
	now := time.Now()
	logger := in.logger.With(zap.String("run_id", runID), zap.String("label", label))

	export, err := in.af.Export(ctx, label, false)
	if err != nil {
		in.countError()
		return nil, err
	}

	remote := make([]splunk.Record, len(export.Records))
	for i, rec := range export.Records {
		record := make(splunk.Record, len(rec)+1)
		for k, v := range rec {
			record[k] = v
		}
		record["label"] = label
		remote[i] = record
	}

	stored, err := in.collection.Query(ctx, splunk.Record{"label": label}, false)
	if err != nil {
		in.countError()
		return nil, err
	}

	outcome := Diff(remote, stored)
	logger.Info("export compared",
		zap.String("outcome", string(outcome)),
		zap.Int("remote", len(remote)),
		zap.Int("stored", len(stored)),
	)

	result := &RunResult{
		RunID:   runID,
		Label:   label,
		Outcome: outcome,
		Remote:  len(remote),
	}

	switch outcome {
	case OutcomeUnchanged:
		// Stored state is current; nothing to write.
	case OutcomeChanged:
		if _, err := in.collection.Query(ctx, splunk.Record{"label": label}, true); err != nil {
			in.countError()
			return nil, err
		}
		fallthrough
	case OutcomeNew:
		if len(remote) > 0 {
			if _, err := in.collection.BatchCreate(ctx, remote, now); err != nil {
				in.countError()
				return nil, err
			}
		}
		for _, record := range remote {
			if err := in.events.Write(record, label, runID, now); err != nil {
				in.countError()
				return nil, err
			}
			result.Emitted++
		}
	}

	if in.metrics != nil {
		in.metrics.Runs.WithLabelValues(string(outcome)).Inc()
		in.metrics.Events.Add(float64(result.Emitted))
	}
	logger.Info("run finished", zap.Int("emitted", result.Emitted))
	return result, nil
}

func (in *ExportInput) countError() {
	if in.metrics != nil {
		in.metrics.Errors.Inc()
	}
}
