package domain

// AggregationBucket is one ranked label with its count and percentage of
// all items that carried a usable label.
type AggregationBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary is the ranked statistics derived from a list of classified items
// for one label dimension. Recomputed on demand, never updated in place.
type Summary struct {
	// Ranked contains every distinct label, count-descending.
	Ranked []AggregationBucket `json:"ranked"`

	// Chart is Ranked truncated to the top labels with the remainder
	// folded into a synthetic "Other" bucket, for pie/bar display.
	Chart []AggregationBucket `json:"chart"`

	TotalWithData    int `json:"total_with_data"`
	TotalWithoutData int `json:"total_without_data"`
	DistinctLabels   int `json:"distinct_labels"`

	// WithoutDataPercentage is TotalWithoutData over the grand total.
	// Note the denominator differs from per-bucket percentages, which use
	// TotalWithData; downstream display relies on this.
	WithoutDataPercentage float64 `json:"without_data_percentage"`
}
