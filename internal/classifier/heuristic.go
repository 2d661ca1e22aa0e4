// Package classifier decides whether a video description or comment is
// sponsored content. Two classifiers share one result shape: a
// deterministic keyword heuristic and a Gemini-backed AI adapter.
package classifier

import (
	"strings"
	"time"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
)

// Heuristic is the deterministic substring classifier over the fixed
// bilingual phrase list. It makes no external calls and never fails.
type Heuristic struct {
	matcher *ahocorasick.Matcher
	phrases []string
	logger  logger.Logger
}

// NewHeuristic builds the Aho-Corasick automaton over the phrase list.
func NewHeuristic(log logger.Logger) *Heuristic {
	return newHeuristicWithPhrases(log, sponsorshipPhrases)
}

func newHeuristicWithPhrases(log logger.Logger, phrases []string) *Heuristic {
	return &Heuristic{
		matcher: ahocorasick.NewStringMatcher(phrases),
		phrases: phrases,
		logger:  log,
	}
}

// Classify scans text for sponsorship phrases. On a match it reports
// sponsored with the first matching phrase in list order; on no match it
// reports not sponsored with all fields empty. Empty text is not an
// invitation to guess: it comes back not sponsored with AnalysisError set.
func (h *Heuristic) Classify(text string) domain.ClassificationResult {
	now := time.Now()
	result := domain.ClassificationResult{
		Method:       domain.MethodHeuristic,
		ClassifiedAt: &now,
	}

	if strings.TrimSpace(text) == "" {
		result.AnalysisError = "no text available for analysis"
		return result
	}

	hits := h.matcher.Match([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return result
	}

	// Hits carry dictionary indices; the lowest index is the earliest
	// phrase in list order, which is the one the contract reports.
	first := hits[0]
	for _, hit := range hits[1:] {
		if hit < first {
			first = hit
		}
	}

	result.Sponsored = true
	result.DetectedKeywords = h.phrases[first]

	h.logger.Debug("heuristic match",
		logger.String("phrase", result.DetectedKeywords),
		logger.Int("hits", len(hits)),
	)

	return result
}

// PhraseCount returns the number of phrases in the matcher's dictionary.
func (h *Heuristic) PhraseCount() int {
	return len(h.phrases)
}
