// Package runs owns the lifecycle of analysis runs: it fetches the items
// for a requested video or channel, drives the classification pipeline,
// fans progressive snapshots out to subscribers, and persists finished
// runs.
package runs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/processor"
	"github.com/ytlens/sponsorlens/internal/storage"
	"github.com/ytlens/sponsorlens/internal/telemetry"
	"github.com/ytlens/sponsorlens/internal/youtube"
)

// Run statuses.
const (
	StatusFetching    = "fetching"
	StatusClassifying = "classifying"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusCanceled    = "canceled"
)

// subscriberBuffer is the per-subscriber snapshot channel size. A
// subscriber that falls this far behind is dropped rather than allowed to
// stall the run.
const subscriberBuffer = 8

// ErrRunNotFound indicates no live or retained run has the given ID.
var ErrRunNotFound = errors.New("run not found")

// DataProvider fetches raw items to classify.
type DataProvider interface {
	ListVideoComments(ctx context.Context, videoID, pageToken string) (domain.Page, error)
	ListChannelUploads(ctx context.Context, channelID, pageToken string) (domain.Page, error)
	ResolveChannelID(ctx context.Context, ref youtube.Ref) (string, error)
}

// Pipeline classifies a batch and emits progressive snapshots.
// AIAvailable reports whether an AI run can succeed at all, so a doomed
// request is rejected before any quota is spent fetching its items.
type Pipeline interface {
	Run(ctx context.Context, items []domain.RawItem, useAI bool) (<-chan processor.Snapshot, error)
	AIAvailable() bool
}

// Repository persists finished runs. It may be nil, in which case runs
// live only in memory.
type Repository interface {
	SaveRun(ctx context.Context, run storage.RunRecord, items []domain.ClassifiedItem) error
	PruneRuns(ctx context.Context, keep int) error
}

// Request describes one analysis run to start.
type Request struct {
	// SourceRef is a video or channel URL, ID, or @handle.
	SourceRef string `json:"source_ref"`
	// UseAI selects Gemini classification instead of the keyword heuristic.
	UseAI bool `json:"use_ai"`
	// MaxItems caps the batch; zero means the configured default.
	MaxItems int `json:"max_items,omitempty"`
}

// View is a caller-facing copy of a run's current state. Items is an
// immutable snapshot; mutating it cannot affect the run.
type View struct {
	ID         string                  `json:"id"`
	SourceRef  string                  `json:"source_ref"`
	Mode       string                  `json:"mode"`
	Status     string                  `json:"status"`
	Error      string                  `json:"error,omitempty"`
	Items      []domain.ClassifiedItem `json:"items"`
	Completed  int                     `json:"completed"`
	Total      int                     `json:"total"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
}

type runState struct {
	mu          sync.RWMutex
	view        View
	cancel      context.CancelFunc
	subscribers map[string]chan processor.Snapshot
}

// Options carries the manager's tunables.
type Options struct {
	MaxItems  int
	Retention int
}

// Manager starts, tracks, and finishes analysis runs.
type Manager struct {
	provider  DataProvider
	pipeline  Pipeline
	repo      Repository
	telemetry *telemetry.Provider
	logger    logger.Logger
	opts      Options

	baseCtx context.Context

	mu   sync.RWMutex
	runs map[string]*runState
}

// NewManager creates a run manager. baseCtx bounds the lifetime of all
// runs; canceling it cancels every run in flight.
func NewManager(
	baseCtx context.Context,
	provider DataProvider,
	pipeline Pipeline,
	repo Repository,
	tel *telemetry.Provider,
	log logger.Logger,
	opts Options,
) *Manager {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 200
	}
	if opts.Retention <= 0 {
		opts.Retention = 100
	}
	return &Manager{
		provider:  provider,
		pipeline:  pipeline,
		repo:      repo,
		telemetry: tel,
		logger:    log,
		opts:      opts,
		baseCtx:   baseCtx,
		runs:      make(map[string]*runState),
	}
}

// Start validates the request, registers a new run, and begins executing
// it in the background. The returned view has status "fetching".
func (m *Manager) Start(req Request) (View, error) {
	ref, err := youtube.ParseRef(req.SourceRef)
	if err != nil {
		return View{}, err
	}
	if req.UseAI && (m.pipeline == nil || !m.pipeline.AIAvailable()) {
		return View{}, processor.ErrMissingCredential
	}

	mode := "heuristic"
	if req.UseAI {
		mode = "ai"
	}

	ctx, cancel := context.WithCancel(m.baseCtx)
	state := &runState{
		view: View{
			ID:        uuid.NewString(),
			SourceRef: req.SourceRef,
			Mode:      mode,
			Status:    StatusFetching,
			StartedAt: time.Now().UTC(),
		},
		cancel:      cancel,
		subscribers: make(map[string]chan processor.Snapshot),
	}

	m.mu.Lock()
	m.runs[state.view.ID] = state
	m.mu.Unlock()

	if m.telemetry != nil && m.telemetry.Metrics != nil {
		m.telemetry.Metrics.ActiveRuns.Inc()
		m.telemetry.Metrics.RunsStarted.WithLabelValues(mode).Inc()
	}
	m.logger.Info("run started",
		logger.String("run_id", state.view.ID),
		logger.String("source", req.SourceRef),
		logger.String("mode", mode),
	)

	go m.execute(ctx, state, ref, req)

	return state.snapshotView(), nil
}

// Get returns the current state of a live or retained run.
func (m *Manager) Get(runID string) (View, error) {
	m.mu.RLock()
	state, ok := m.runs[runID]
	m.mu.RUnlock()
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return state.snapshotView(), nil
}

// Cancel abandons a running batch. Partial results stay available.
func (m *Manager) Cancel(runID string) error {
	m.mu.RLock()
	state, ok := m.runs[runID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	state.cancel()
	return nil
}

// Subscribe attaches to a run's progressive snapshot stream. The current
// snapshot is delivered first, and the channel closes when the run
// finishes. The cleanup func must be called when the subscriber leaves.
func (m *Manager) Subscribe(runID string) (<-chan processor.Snapshot, func(), error) {
	m.mu.RLock()
	state, ok := m.runs[runID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	ch := make(chan processor.Snapshot, subscriberBuffer)
	id := uuid.NewString()

	state.mu.Lock()
	finished := state.view.FinishedAt != nil
	current := processor.Snapshot{
		Items:     state.view.Items,
		Completed: state.view.Completed,
		Total:     state.view.Total,
		Done:      finished,
	}
	if !finished {
		state.subscribers[id] = ch
		// Deliver the current snapshot while still holding the lock. The
		// channel is fresh and buffered so this cannot block, and the
		// finisher snapshots the subscriber map under the same lock, so it
		// cannot observe ch, close it, and race this send.
		ch <- current
	}
	state.mu.Unlock()

	if finished {
		ch <- current
		close(ch)
		return ch, func() {}, nil
	}

	// Only the publishing side closes subscriber channels; cleanup just
	// detaches so a departed client can never race a send with a close.
	cleanup := func() {
		state.mu.Lock()
		delete(state.subscribers, id)
		state.mu.Unlock()
	}
	return ch, cleanup, nil
}

func (m *Manager) execute(ctx context.Context, state *runState, ref youtube.Ref, req Request) {
	defer func() {
		if m.telemetry != nil && m.telemetry.Metrics != nil {
			m.telemetry.Metrics.ActiveRuns.Dec()
		}
	}()

	maxItems := req.MaxItems
	if maxItems <= 0 || maxItems > m.opts.MaxItems {
		maxItems = m.opts.MaxItems
	}

	items, err := m.fetchItems(ctx, ref, maxItems)
	if err != nil {
		m.finish(state, statusForError(ctx, err), err)
		return
	}

	state.mu.Lock()
	state.view.Status = StatusClassifying
	state.view.Total = len(items)
	state.mu.Unlock()

	snapshots, err := m.pipeline.Run(ctx, items, req.UseAI)
	if err != nil {
		m.finish(state, StatusFailed, err)
		return
	}

	for snap := range snapshots {
		state.mu.Lock()
		state.view.Items = snap.Items
		state.view.Completed = snap.Completed
		state.view.Total = snap.Total
		subscribers := publishTargets(state.subscribers)
		state.mu.Unlock()

		m.publish(state, subscribers, snap)
	}

	if ctx.Err() != nil {
		m.finish(state, StatusCanceled, nil)
		return
	}
	m.finish(state, StatusCompleted, nil)
}

// fetchItems pages through the provider until the cap is reached. A page
// error after at least one successful page degrades to a partial batch
// rather than failing the run.
func (m *Manager) fetchItems(ctx context.Context, ref youtube.Ref, maxItems int) ([]domain.RawItem, error) {
	var list func(pageToken string) (domain.Page, error)
	if ref.Kind == youtube.RefVideo {
		list = func(pageToken string) (domain.Page, error) {
			return m.provider.ListVideoComments(ctx, ref.Value, pageToken)
		}
	} else {
		channelID, err := m.provider.ResolveChannelID(ctx, ref)
		if err != nil {
			return nil, err
		}
		list = func(pageToken string) (domain.Page, error) {
			return m.provider.ListChannelUploads(ctx, channelID, pageToken)
		}
	}

	var items []domain.RawItem
	pageToken := ""
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		page, err := list(pageToken)
		if err != nil {
			if len(items) == 0 {
				return nil, err
			}
			m.logger.Warn("fetch degraded to partial batch",
				logger.Int("fetched", len(items)),
				logger.Error(err),
			)
			return items, nil
		}

		items = append(items, page.Items...)
		if len(items) >= maxItems {
			return items[:maxItems], nil
		}
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

func (m *Manager) publish(state *runState, subscribers map[string]chan processor.Snapshot, snap processor.Snapshot) {
	if m.telemetry != nil && m.telemetry.Metrics != nil {
		m.telemetry.Metrics.SnapshotsPublished.Inc()
	}

	for id, ch := range subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscriber; drop it rather than stall the run.
			state.mu.Lock()
			if sub, live := state.subscribers[id]; live {
				delete(state.subscribers, id)
				close(sub)
			}
			state.mu.Unlock()
			m.logger.Warn("subscriber buffer full, dropping",
				logger.String("run_id", state.view.ID),
			)
		}
	}
}

func (m *Manager) finish(state *runState, status string, runErr error) {
	now := time.Now().UTC()

	state.mu.Lock()
	state.view.Status = status
	state.view.FinishedAt = &now
	if runErr != nil {
		state.view.Error = runErr.Error()
	}
	final := processor.Snapshot{
		Items:     state.view.Items,
		Completed: state.view.Completed,
		Total:     state.view.Total,
		Done:      true,
	}
	subscribers := publishTargets(state.subscribers)
	state.subscribers = make(map[string]chan processor.Snapshot)
	view := state.view
	state.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- final:
		default:
		}
		close(ch)
	}

	if runErr != nil {
		m.logger.Warn("run finished with error",
			logger.String("run_id", view.ID),
			logger.String("status", status),
			logger.Error(runErr),
		)
	} else {
		m.logger.Info("run finished",
			logger.String("run_id", view.ID),
			logger.String("status", status),
			logger.Int("completed", view.Completed),
			logger.Int("total", view.Total),
		)
	}

	m.persist(view)
	m.pruneRetained()
}

func (m *Manager) persist(view View) {
	if m.repo == nil {
		return
	}

	// The run context may already be canceled; persistence gets its own.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := storage.RunRecord{
		ID:             view.ID,
		SourceRef:      view.SourceRef,
		Mode:           view.Mode,
		Status:         view.Status,
		ItemsTotal:     view.Total,
		ItemsCompleted: view.Completed,
		StartedAt:      view.StartedAt,
		FinishedAt:     view.FinishedAt,
	}
	if err := m.repo.SaveRun(ctx, record, view.Items); err != nil {
		m.logger.Error("failed to persist run",
			logger.String("run_id", view.ID),
			logger.Error(err),
		)
		return
	}
	if err := m.repo.PruneRuns(ctx, m.opts.Retention); err != nil {
		m.logger.Warn("failed to prune persisted runs", logger.Error(err))
	}
}

// pruneRetained drops the oldest finished runs beyond the retention cap.
// Live runs are never dropped.
func (m *Manager) pruneRetained() {
	m.mu.Lock()
	defer m.mu.Unlock()

	type finished struct {
		id      string
		started time.Time
	}
	var done []finished
	for id, state := range m.runs {
		view := state.snapshotView()
		if view.FinishedAt != nil {
			done = append(done, finished{id: id, started: view.StartedAt})
		}
	}
	if len(done) <= m.opts.Retention {
		return
	}

	sort.Slice(done, func(i, j int) bool { return done[i].started.Before(done[j].started) })
	for _, f := range done[:len(done)-m.opts.Retention] {
		delete(m.runs, f.id)
	}
}

func (s *runState) snapshotView() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func publishTargets(subscribers map[string]chan processor.Snapshot) map[string]chan processor.Snapshot {
	targets := make(map[string]chan processor.Snapshot, len(subscribers))
	for id, ch := range subscribers {
		targets[id] = ch
	}
	return targets
}

func statusForError(ctx context.Context, err error) string {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return StatusCanceled
	}
	return StatusFailed
}
