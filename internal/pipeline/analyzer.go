// Package pipeline runs one uploaded table through parsing, analysis,
// hotspot geocoding, storage, and summary publishing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/observability"
)

// Record is a stored analysis keyed by its sanitized filename.
type Record struct {
	Filename   string                `json:"filename"`
	AnalyzedAt time.Time             `json:"analyzed_at"`
	Result     domain.AnalysisResult `json:"result"`
}

// ResultStore holds completed records.
type ResultStore interface {
	Put(rec Record)
	Get(filename string) (Record, bool)
	Delete(filename string) bool
	List() []string
}

// Publisher emits a summary of a completed record to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Analyzer orchestrates a single analysis end to end.
type Analyzer struct {
	store     ResultStore
	geocoder  domain.Geocoder
	publisher Publisher
	parseOpts domain.ParseOptions
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	backoff time.Duration
}

// New creates an Analyzer. geocoder and publisher may be nil to disable
// hotspot geocoding and summary publishing respectively.
func New(store ResultStore, geocoder domain.Geocoder, publisher Publisher, opts domain.ParseOptions, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	a := &Analyzer{
		store:     store,
		geocoder:  geocoder,
		publisher: publisher,
		parseOpts: opts,
		logger:    logger,
		metrics:   metrics,
		backoff:   initialBackoff,
	}
	a.ready.Store(store != nil)
	return a
}

// CheckReadiness returns nil while the analyzer accepts work.
func (a *Analyzer) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("analyzer is not accepting uploads")
	}
	return nil
}

// Drain marks the analyzer not ready ahead of shutdown.
func (a *Analyzer) Drain() {
	a.ready.Store(false)
}

// Analyze parses r as a delimited table, aggregates it, and stores the
// result under filename, replacing any earlier record of that name. Parse
// failures wrap domain.ErrUnparsableInput and store nothing. Geocoding and
// publishing failures are logged and never fail the analysis.
func (a *Analyzer) Analyze(ctx context.Context, filename string, r io.Reader) (Record, error) {
	start := time.Now()

	tbl, err := domain.ParseTable(r, a.parseOpts)
	if err != nil {
		a.metrics.Analyses.WithLabelValues("unparsable").Inc()
		a.logger.Warn("rejected unparsable upload", "filename", filename, "error", err)
		return Record{}, fmt.Errorf("analyze %s: %w", filename, err)
	}

	result := domain.Analyze(tbl)
	if len(result.Warnings) > 0 {
		a.metrics.HotspotFailures.Inc()
		a.logger.Warn("analysis degraded", "filename", filename, "warnings", result.Warnings)
	}
	result.Hotspots = domain.EnrichHotspots(ctx, result.Hotspots, a.geocoder, a.logger)

	rec := Record{
		Filename:   filename,
		AnalyzedAt: clock.Now().UTC(),
		Result:     result,
	}
	a.store.Put(rec)

	a.metrics.Analyses.WithLabelValues("success").Inc()
	a.metrics.RowsAnalyzed.Add(float64(result.RowCount))
	a.metrics.HourSource.WithLabelValues(string(result.HourSource)).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	a.logger.Info("analysis complete",
		"filename", filename,
		"rows", result.RowCount,
		"hour_source", result.HourSource,
		"hotspots", len(result.Hotspots),
	)

	a.publish(ctx, rec)
	return rec, nil
}

// Get returns the stored record for filename.
func (a *Analyzer) Get(filename string) (Record, bool) {
	return a.store.Get(filename)
}

// List returns the filenames of all stored records.
func (a *Analyzer) List() []string {
	return a.store.List()
}

// Delete removes a stored record, reporting whether it existed.
func (a *Analyzer) Delete(filename string) bool {
	return a.store.Delete(filename)
}

// publish sends the record summary, retrying with exponential backoff.
func (a *Analyzer) publish(ctx context.Context, rec Record) {
	if a.publisher == nil {
		return
	}

	backoff := a.backoff
	for attempt := 1; attempt <= publishRetries; attempt++ {
		err := a.publisher.Publish(ctx, rec)
		if err == nil {
			a.metrics.PublishAttempts.WithLabelValues("success").Inc()
			return
		}
		a.metrics.PublishAttempts.WithLabelValues("error").Inc()
		a.logger.Warn("publish summary failed",
			"filename", rec.Filename,
			"attempt", attempt,
			"error", err,
		)
		if attempt == publishRetries || !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	a.logger.Error("giving up on summary publish", "filename", rec.Filename)
}
