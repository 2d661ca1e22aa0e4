package api

import (
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/runs"
)

// StartRunResponse is the body returned when a run is accepted.
type StartRunResponse struct {
	Run runs.View `json:"run"`
}

// RunResponse is the body for a single run lookup.
type RunResponse struct {
	Run runs.View `json:"run"`
}

// RunListEntry is one row in the run listing.
type RunListEntry struct {
	ID             string `json:"id"`
	SourceRef      string `json:"source_ref"`
	Mode           string `json:"mode"`
	Status         string `json:"status"`
	ItemsTotal     int    `json:"items_total"`
	ItemsCompleted int    `json:"items_completed"`
	StartedAt      string `json:"started_at"`
}

// RunListResponse is the body for the run listing.
type RunListResponse struct {
	Runs  []RunListEntry `json:"runs"`
	Total int            `json:"total"`
}

// ClassifyRequest is a single ad hoc classification request.
type ClassifyRequest struct {
	Text  string `json:"text" binding:"required"`
	Title string `json:"title"`
	UseAI bool   `json:"use_ai"`
}

// ClassifyResponse carries one classification verdict.
type ClassifyResponse struct {
	Result domain.ClassificationResult `json:"result"`
}

// SummaryResponse is the body for an aggregated run summary.
type SummaryResponse struct {
	RunID   string         `json:"run_id"`
	By      string         `json:"by"`
	Summary domain.Summary `json:"summary"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
