// Package aggregate turns classified items into ranked label statistics:
// counts and percentages per distinct label, for any dimension a selector
// can extract (sponsorship, advertiser, country, detected keyword).
package aggregate

import (
	"math"
	"sort"

	"github.com/ytlens/sponsorlens/internal/domain"
)

// maxChartBuckets is how many ranked labels chart output keeps before the
// remainder folds into a synthetic "Other" bucket. Ranked output is never
// truncated.
const maxChartBuckets = 7

// OtherLabel is the label of the synthetic overflow bucket in chart output.
const OtherLabel = "Other"

// LabelSelector extracts the ranking dimension from one item. An empty
// return means the item carries no usable label for this dimension and is
// excluded from the percentage denominator.
type LabelSelector func(domain.ClassifiedItem) string

// Aggregate derives a Summary for one label dimension. It is pure: calling
// it twice on the same unchanged list yields identical summaries.
//
// Ordering is count-descending with ties broken by first occurrence in the
// input, so identical input always produces identical output. Per-bucket
// percentages use the labeled-item count as denominator; the without-data
// percentage deliberately uses the grand total instead, and downstream
// display relies on that asymmetry.
func Aggregate(items []domain.ClassifiedItem, selector LabelSelector) domain.Summary {
	counts := make(map[string]int)
	order := make([]string, 0)

	totalWith := 0
	for _, item := range items {
		label := selector(item)
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		totalWith++
	}
	totalWithout := len(items) - totalWith

	ranked := make([]domain.AggregationBucket, 0, len(order))
	for _, label := range order {
		ranked = append(ranked, domain.AggregationBucket{
			Label: label,
			Count: counts[label],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	for i := range ranked {
		ranked[i].Percentage = percent(ranked[i].Count, totalWith)
	}

	summary := domain.Summary{
		Ranked:           ranked,
		Chart:            chartBuckets(ranked, totalWith),
		TotalWithData:    totalWith,
		TotalWithoutData: totalWithout,
		DistinctLabels:   len(ranked),
	}
	if len(items) > 0 {
		summary.WithoutDataPercentage = percent(totalWithout, len(items))
	}
	return summary
}

// chartBuckets truncates the ranked list for presentation, folding
// everything past the top labels into one "Other" bucket.
func chartBuckets(ranked []domain.AggregationBucket, totalWith int) []domain.AggregationBucket {
	if len(ranked) <= maxChartBuckets {
		return append([]domain.AggregationBucket(nil), ranked...)
	}

	chart := append([]domain.AggregationBucket(nil), ranked[:maxChartBuckets]...)
	otherCount := 0
	for _, bucket := range ranked[maxChartBuckets:] {
		otherCount += bucket.Count
	}
	chart = append(chart, domain.AggregationBucket{
		Label:      OtherLabel,
		Count:      otherCount,
		Percentage: percent(otherCount, totalWith),
	})
	return chart
}

// percent is count over total as a percentage, rounded to one decimal.
func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Sponsorship labels.
const (
	LabelSponsored    = "Sponsored"
	LabelNotSponsored = "Not sponsored"
)

// BySponsorship labels each item Sponsored or Not sponsored. Items that
// are unclassified, or whose classification errored without a sponsored
// verdict, carry no label and surface under TotalWithoutData.
func BySponsorship(item domain.ClassifiedItem) string {
	if !item.Classified {
		return ""
	}
	if item.Sponsored {
		return LabelSponsored
	}
	if item.AnalysisError != "" {
		return ""
	}
	return LabelNotSponsored
}

// ByAdvertiser ranks by extracted advertiser name.
func ByAdvertiser(item domain.ClassifiedItem) string {
	if !item.Classified {
		return ""
	}
	return item.AdvertiserName
}

// ByCountry ranks by country guess, normalizing two-letter codes to their
// display names.
func ByCountry(item domain.ClassifiedItem) string {
	if !item.Classified {
		return ""
	}
	return NormalizeCountry(item.CountryGuess)
}

// ByKeyword ranks by the detected sponsorship keyword or phrase.
func ByKeyword(item domain.ClassifiedItem) string {
	if !item.Classified {
		return ""
	}
	return item.DetectedKeywords
}
