// Package processor drives batch classification: one item at a time, a
// snapshot of the whole result list after each, so callers can render
// partial progress while a long batch runs.
package processor

import (
	"context"
	"errors"
	"time"

	"github.com/ytlens/sponsorlens/internal/classifier"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/telemetry"
)

// ErrMissingCredential is returned when an AI batch is requested but no
// provider credential was configured. The whole batch fails up front; there
// is no partial AI run.
var ErrMissingCredential = errors.New("ai classification requested but no provider credential configured")

// Snapshot is one immutable view of a batch in progress. Items holds the
// full result list; exactly Completed of them are finalized. Snapshots are
// prefix-consistent: item N is finalized before item N+1 is started, and
// Completed never decreases across the sequence.
type Snapshot struct {
	Items     []domain.ClassifiedItem `json:"items"`
	Completed int                     `json:"completed"`
	Total     int                     `json:"total"`
	Done      bool                    `json:"done"`
}

// Orchestrator sequences fetch results through classification. Execution is
// deliberately sequential: it respects the provider quota and makes
// incremental emission trivial, with no merge or ordering concerns.
type Orchestrator struct {
	heuristic *classifier.Heuristic
	ai        *classifier.AI // nil when no provider credential is configured
	limiter   *RateLimiter
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// NewOrchestrator creates an orchestrator. ai may be nil; heuristic runs
// are unaffected and AI runs fail with ErrMissingCredential.
func NewOrchestrator(
	heuristic *classifier.Heuristic,
	ai *classifier.AI,
	limiter *RateLimiter,
	tp *telemetry.Provider,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		heuristic: heuristic,
		ai:        ai,
		limiter:   limiter,
		telemetry: tp,
		logger:    log,
	}
}

// AIAvailable reports whether a provider credential was configured, so
// callers can reject an AI batch before doing any fetch work.
func (o *Orchestrator) AIAvailable() bool {
	return o.ai != nil
}

// Run classifies rawItems in input order and returns a channel of
// snapshots, one per finalized item, closed when the batch finishes or ctx
// is cancelled. Cancellation takes effect between items; everything already
// finalized stays valid in the last emitted snapshot.
//
// Per-item failures never abort the batch: they are recorded on that item's
// AnalysisError. Only the missing-credential precondition fails the whole
// run, and it does so before any item is touched.
func (o *Orchestrator) Run(ctx context.Context, rawItems []domain.RawItem, useAI bool) (<-chan Snapshot, error) {
	if useAI && o.ai == nil {
		return nil, ErrMissingCredential
	}

	if o.telemetry != nil && o.telemetry.Metrics != nil {
		o.telemetry.Metrics.BatchSize.Observe(float64(len(rawItems)))
	}

	snapshots := make(chan Snapshot, len(rawItems)+1)
	go o.run(ctx, rawItems, useAI, snapshots)
	return snapshots, nil
}

func (o *Orchestrator) run(ctx context.Context, rawItems []domain.RawItem, useAI bool, snapshots chan<- Snapshot) {
	defer close(snapshots)

	startTime := time.Now()
	items := make([]domain.ClassifiedItem, len(rawItems))
	for i, raw := range rawItems {
		items[i] = domain.ClassifiedItem{RawItem: raw}
	}

	if len(items) == 0 {
		snapshots <- Snapshot{Items: []domain.ClassifiedItem{}, Done: true}
		return
	}

	o.logger.Info("batch starting",
		logger.Int("items", len(items)),
		logger.Bool("use_ai", useAI),
	)

	completed := 0
	for i := range items {
		select {
		case <-ctx.Done():
			o.logger.Warn("batch cancelled",
				logger.Int("completed", completed),
				logger.Int("total", len(items)),
			)
			return
		default:
		}

		itemStart := time.Now()
		if useAI {
			// Spacing applies to AI items only; on cancellation mid-wait
			// the item is left unclassified and the batch stops.
			if err := o.limiter.Wait(ctx); err != nil {
				return
			}
			items[i].ClassificationResult = o.ai.Classify(ctx, items[i].Text, items[i].Title)
		} else {
			items[i].ClassificationResult = o.heuristic.Classify(items[i].Text)
		}
		items[i].Classified = true
		completed++

		o.telemetry.RecordClassification(
			items[i].Method,
			time.Since(itemStart),
			items[i].AnalysisError != "",
		)

		snapshots <- Snapshot{
			Items:     snapshotItems(items),
			Completed: completed,
			Total:     len(items),
			Done:      completed == len(items),
		}
	}

	o.logger.Info("batch complete",
		logger.Int("items", len(items)),
		logger.Duration("duration", time.Since(startTime)),
	)
}

// snapshotItems copies the result list so every emitted snapshot stays
// immutable while the loop keeps filling later items.
func snapshotItems(items []domain.ClassifiedItem) []domain.ClassifiedItem {
	out := make([]domain.ClassifiedItem, len(items))
	copy(out, items)
	return out
}
