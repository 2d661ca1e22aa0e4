package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ytlens/sponsorlens/internal/domain"
)

// ErrRunNotFound indicates the requested run is not persisted.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the persisted header of one analysis run.
type RunRecord struct {
	ID             string     `db:"id"`
	SourceRef      string     `db:"source_ref"`
	Mode           string     `db:"mode"`
	Status         string     `db:"status"`
	ItemsTotal     int        `db:"items_total"`
	ItemsCompleted int        `db:"items_completed"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}

type itemRow struct {
	RunID            string     `db:"run_id"`
	ItemID           string     `db:"item_id"`
	Position         int        `db:"position"`
	Kind             string     `db:"kind"`
	Title            string     `db:"title"`
	Text             string     `db:"text"`
	AuthorRef        string     `db:"author_ref"`
	PublishedAt      *time.Time `db:"published_at"`
	Classified       bool       `db:"classified"`
	Sponsored        bool       `db:"sponsored"`
	AdvertiserName   string     `db:"advertiser_name"`
	ProductOrService string     `db:"product_or_service"`
	DetectedKeywords string     `db:"detected_keywords"`
	CountryGuess     string     `db:"country_guess"`
	AnalysisError    string     `db:"analysis_error"`
	Method           string     `db:"method"`
	ClassifiedAt     *time.Time `db:"classified_at"`
}

// RunsRepository persists analysis runs and their classified items.
type RunsRepository struct {
	db *sqlx.DB
}

// NewRunsRepository creates a runs repository.
func NewRunsRepository(db *sqlx.DB) *RunsRepository {
	return &RunsRepository{db: db}
}

// SaveRun stores a finished run and its items in one transaction. Saving
// the same run ID again replaces its items.
func (r *RunsRepository) SaveRun(ctx context.Context, run RunRecord, items []domain.ClassifiedItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM run_items WHERE run_id = ?`), run.ID); err != nil {
		return fmt.Errorf("failed to clear run items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM runs WHERE id = ?`), run.ID); err != nil {
		return fmt.Errorf("failed to clear run: %w", err)
	}

	insertRun := tx.Rebind(`
		INSERT INTO runs (id, source_ref, mode, status, items_total, items_completed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err = tx.ExecContext(ctx, insertRun,
		run.ID, run.SourceRef, run.Mode, run.Status,
		run.ItemsTotal, run.ItemsCompleted, run.StartedAt, run.FinishedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertItem := tx.Rebind(`
		INSERT INTO run_items (
			run_id, item_id, position, kind, title, text, author_ref, published_at,
			classified, sponsored, advertiser_name, product_or_service,
			detected_keywords, country_guess, analysis_error, method, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, item := range items {
		row := toRow(run.ID, i, item)
		if _, err = tx.ExecContext(ctx, insertItem,
			row.RunID, row.ItemID, row.Position, row.Kind, row.Title, row.Text, row.AuthorRef, row.PublishedAt,
			row.Classified, row.Sponsored, row.AdvertiserName, row.ProductOrService,
			row.DetectedKeywords, row.CountryGuess, row.AnalysisError, row.Method, row.ClassifiedAt,
		); err != nil {
			return fmt.Errorf("failed to insert run item %s: %w", row.ItemID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun loads a persisted run header and its items.
func (r *RunsRepository) GetRun(ctx context.Context, runID string) (RunRecord, []domain.ClassifiedItem, error) {
	var run RunRecord
	err := r.db.GetContext(ctx, &run, r.db.Rebind(`SELECT * FROM runs WHERE id = ?`), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("failed to load run: %w", err)
	}

	// Items come back in the run's input order: the aggregator breaks
	// count ties by first occurrence, so a persisted run must rank its
	// labels the same way it did live.
	var rows []itemRow
	query := r.db.Rebind(`SELECT * FROM run_items WHERE run_id = ? ORDER BY position`)
	if err = r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return RunRecord{}, nil, fmt.Errorf("failed to load run items: %w", err)
	}

	items := make([]domain.ClassifiedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromRow(row))
	}
	return run, items, nil
}

// ListRuns returns the most recently started runs, newest first.
func (r *RunsRepository) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	query := r.db.Rebind(`SELECT * FROM runs ORDER BY started_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// PruneRuns deletes everything but the most recently started keep runs.
func (r *RunsRepository) PruneRuns(ctx context.Context, keep int) error {
	query := r.db.Rebind(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`)
	if _, err := r.db.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}
	cleanup := `DELETE FROM run_items WHERE run_id NOT IN (SELECT id FROM runs)`
	if _, err := r.db.ExecContext(ctx, cleanup); err != nil {
		return fmt.Errorf("failed to prune run items: %w", err)
	}
	return nil
}

func toRow(runID string, position int, item domain.ClassifiedItem) itemRow {
	return itemRow{
		RunID:            runID,
		ItemID:           item.ID,
		Position:         position,
		Kind:             string(item.Kind),
		Title:            item.Title,
		Text:             item.Text,
		AuthorRef:        item.AuthorRef,
		PublishedAt:      item.PublishedAt,
		Classified:       item.Classified,
		Sponsored:        item.Sponsored,
		AdvertiserName:   item.AdvertiserName,
		ProductOrService: item.ProductOrService,
		DetectedKeywords: item.DetectedKeywords,
		CountryGuess:     item.CountryGuess,
		AnalysisError:    item.AnalysisError,
		Method:           item.Method,
		ClassifiedAt:     item.ClassifiedAt,
	}
}

func fromRow(row itemRow) domain.ClassifiedItem {
	item := domain.ClassifiedItem{
		RawItem: domain.RawItem{
			ID:          row.ItemID,
			Kind:        domain.ItemKind(row.Kind),
			Title:       row.Title,
			Text:        row.Text,
			AuthorRef:   row.AuthorRef,
			PublishedAt: row.PublishedAt,
		},
		Classified: row.Classified,
	}
	if row.Classified {
		item.ClassificationResult = domain.ClassificationResult{
			Sponsored:        row.Sponsored,
			AdvertiserName:   row.AdvertiserName,
			ProductOrService: row.ProductOrService,
			DetectedKeywords: row.DetectedKeywords,
			CountryGuess:     row.CountryGuess,
			AnalysisError:    row.AnalysisError,
			Method:           row.Method,
			ClassifiedAt:     row.ClassifiedAt,
		}
	}
	return item
}
