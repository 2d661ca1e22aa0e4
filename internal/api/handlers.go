// Package api exposes the analysis service over HTTP: starting runs,
// watching their progress, aggregating their results, and ad hoc
// classification.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytlens/sponsorlens/internal/aggregate"
	"github.com/ytlens/sponsorlens/internal/classifier"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/processor"
	"github.com/ytlens/sponsorlens/internal/runs"
	"github.com/ytlens/sponsorlens/internal/storage"
	"github.com/ytlens/sponsorlens/internal/youtube"
)

const defaultListLimit = 20

// Handler handles HTTP requests for the analysis API.
type Handler struct {
	manager   *runs.Manager
	heuristic *classifier.Heuristic
	ai        *classifier.AI
	repo      *storage.RunsRepository
	logger    logger.Logger
}

// NewHandler creates the API handler. ai and repo may be nil when Gemini
// or persistence is not configured.
func NewHandler(
	manager *runs.Manager,
	heuristic *classifier.Heuristic,
	ai *classifier.AI,
	repo *storage.RunsRepository,
	log logger.Logger,
) *Handler {
	return &Handler{
		manager:   manager,
		heuristic: heuristic,
		ai:        ai,
		repo:      repo,
		logger:    log,
	}
}

// StartRun handles POST /api/v1/runs.
func (h *Handler) StartRun(c *gin.Context) {
	var req runs.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.manager.Start(req)
	switch {
	case errors.Is(err, youtube.ErrUnsupportedRef):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, processor.ErrMissingCredential):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, StartRunResponse{Run: view})
}

// GetRun handles GET /api/v1/runs/:id. Live runs come from the manager;
// finished runs evicted from memory come from storage.
func (h *Handler) GetRun(c *gin.Context) {
	runID := c.Param("id")

	view, err := h.loadRun(c, runID)
	if err != nil {
		h.runError(c, err)
		return
	}
	c.JSON(http.StatusOK, RunResponse{Run: view})
}

// ListRuns handles GET /api/v1/runs.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusOK, RunListResponse{Runs: []RunListEntry{}})
		return
	}

	records, err := h.repo.ListRuns(c.Request.Context(), defaultListLimit)
	if err != nil {
		h.logger.Error("failed to list runs", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list runs"})
		return
	}

	resp := RunListResponse{Runs: make([]RunListEntry, 0, len(records)), Total: len(records)}
	for _, r := range records {
		resp.Runs = append(resp.Runs, RunListEntry{
			ID:             r.ID,
			SourceRef:      r.SourceRef,
			Mode:           r.Mode,
			Status:         r.Status,
			ItemsTotal:     r.ItemsTotal,
			ItemsCompleted: r.ItemsCompleted,
			StartedAt:      r.StartedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// CancelRun handles DELETE /api/v1/runs/:id.
func (h *Handler) CancelRun(c *gin.Context) {
	if err := h.manager.Cancel(c.Param("id")); err != nil {
		h.runError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamRun handles GET /api/v1/runs/:id/events as server-sent events.
// Each event is a progressive snapshot; the stream ends with the terminal
// Done snapshot.
func (h *Handler) StreamRun(c *gin.Context) {
	snapshots, cleanup, err := h.manager.Subscribe(c.Param("id"))
	if err != nil {
		h.runError(c, err)
		return
	}
	defer cleanup()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return !snap.Done
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Summarize handles GET /api/v1/runs/:id/summary?by=sponsorship. The by
// parameter selects the ranking dimension; sponsorship is the default.
func (h *Handler) Summarize(c *gin.Context) {
	runID := c.Param("id")
	by := c.DefaultQuery("by", "sponsorship")

	selector, ok := selectorFor(by)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unknown summary dimension; use sponsorship, advertiser, country, or keyword",
		})
		return
	}

	view, err := h.loadRun(c, runID)
	if err != nil {
		h.runError(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		RunID:   runID,
		By:      by,
		Summary: aggregate.Aggregate(view.Items, selector),
	})
}

// Classify handles POST /api/v1/classify for single ad hoc texts.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if req.UseAI {
		if h.ai == nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: processor.ErrMissingCredential.Error()})
			return
		}
		c.JSON(http.StatusOK, ClassifyResponse{Result: h.ai.Classify(c.Request.Context(), req.Text, req.Title)})
		return
	}
	c.JSON(http.StatusOK, ClassifyResponse{Result: h.heuristic.Classify(req.Text)})
}

func (h *Handler) loadRun(c *gin.Context, runID string) (runs.View, error) {
	view, err := h.manager.Get(runID)
	if err == nil {
		view.Items = itemOrEmpty(view.Items)
		return view, nil
	}
	if !errors.Is(err, runs.ErrRunNotFound) || h.repo == nil {
		return runs.View{}, err
	}

	record, items, err := h.repo.GetRun(c.Request.Context(), runID)
	if err != nil {
		return runs.View{}, err
	}
	return runs.View{
		ID:         record.ID,
		SourceRef:  record.SourceRef,
		Mode:       record.Mode,
		Status:     record.Status,
		Items:      itemOrEmpty(items),
		Completed:  record.ItemsCompleted,
		Total:      record.ItemsTotal,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}, nil
}

func (h *Handler) runError(c *gin.Context, err error) {
	if errors.Is(err, runs.ErrRunNotFound) || errors.Is(err, storage.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("run request failed", logger.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func selectorFor(by string) (aggregate.LabelSelector, bool) {
	switch by {
	case "sponsorship":
		return aggregate.BySponsorship, true
	case "advertiser":
		return aggregate.ByAdvertiser, true
	case "country":
		return aggregate.ByCountry, true
	case "keyword":
		return aggregate.ByKeyword, true
	default:
		return nil, false
	}
}

// itemOrEmpty keeps gin from serializing a nil slice as null.
func itemOrEmpty(items []domain.ClassifiedItem) []domain.ClassifiedItem {
	if items == nil {
		return []domain.ClassifiedItem{}
	}
	return items
}
