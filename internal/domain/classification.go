package domain

import "time"

// Classification method constants.
const (
	MethodHeuristic = "heuristic"
	MethodAI        = "ai"
)

// ClassificationResult is the structured sponsorship verdict for one RawItem.
// Created by either the heuristic classifier or the AI adapter and never
// mutated afterwards; re-analysis produces a new result.
type ClassificationResult struct {
	Sponsored        bool   `json:"sponsored"`
	AdvertiserName   string `json:"advertiser_name,omitempty"`
	ProductOrService string `json:"product_or_service,omitempty"`
	DetectedKeywords string `json:"detected_keywords,omitempty"`
	CountryGuess     string `json:"country_guess,omitempty"`
	AnalysisError    string `json:"analysis_error,omitempty"`

	Method       string     `json:"method,omitempty"`
	ClassifiedAt *time.Time `json:"classified_at,omitempty"`
}

// HasEvidence reports whether the result carries any supporting evidence
// for a sponsored verdict. A classifier must never claim sponsored with
// zero evidence and zero error.
func (r ClassificationResult) HasEvidence() bool {
	return r.AdvertiserName != "" || r.ProductOrService != "" || r.DetectedKeywords != ""
}

// ClassifiedItem is a RawItem joined with its classification. Created with
// the classification zeroed when fetched and filled in as the pipeline
// finalizes each item, which is what makes progressive display possible.
type ClassifiedItem struct {
	RawItem
	ClassificationResult

	// Classified reports whether the pipeline has finalized this item.
	Classified bool `json:"classified"`
}
