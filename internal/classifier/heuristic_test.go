package classifier

import (
	"testing"

	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
)

func TestHeuristic_Classify(t *testing.T) {
	h := NewHeuristic(logger.NewNop())

	tests := []struct {
		name          string
		text          string
		wantSponsored bool
		wantKeyword   string
	}{
		{
			name:          "english hashtag",
			text:          "New setup tour! #ad",
			wantSponsored: true,
			wantKeyword:   "#ad",
		},
		{
			name:          "case insensitive",
			text:          "This Video Is SPONSORED by Acme",
			wantSponsored: true,
			wantKeyword:   "this video is sponsored",
		},
		{
			name:          "arabic hashtag",
			text:          "فيديو جديد #إعلان",
			wantSponsored: true,
			wantKeyword:   "#إعلان",
		},
		{
			name:          "arabic partnership",
			text:          "هذا الفيديو بالتعاون مع شركة",
			wantSponsored: true,
			wantKeyword:   "بالتعاون مع",
		},
		{
			name:          "discount code mid-sentence",
			text:          "don't forget to use code SAVE10 at checkout",
			wantSponsored: true,
			wantKeyword:   "use code",
		},
		{
			name:          "clean text",
			text:          "Just a regular vlog about my day",
			wantSponsored: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Classify(tt.text)

			if result.Sponsored != tt.wantSponsored {
				t.Errorf("Sponsored = %v, want %v", result.Sponsored, tt.wantSponsored)
			}
			if result.DetectedKeywords != tt.wantKeyword {
				t.Errorf("DetectedKeywords = %q, want %q", result.DetectedKeywords, tt.wantKeyword)
			}
			if result.Method != domain.MethodHeuristic {
				t.Errorf("Method = %q, want %q", result.Method, domain.MethodHeuristic)
			}
			if result.AnalysisError != "" {
				t.Errorf("unexpected AnalysisError %q", result.AnalysisError)
			}
		})
	}
}

func TestHeuristic_FirstPhraseInListOrderWins(t *testing.T) {
	h := NewHeuristic(logger.NewNop())

	// "برعاية" precedes every English phrase in the list, regardless of
	// where either appears in the text.
	result := h.Classify("use code SAVE10, هذا الفيديو برعاية شركة")

	if !result.Sponsored {
		t.Fatal("expected sponsored")
	}
	if result.DetectedKeywords != "برعاية" {
		t.Errorf("DetectedKeywords = %q, want the earliest listed phrase", result.DetectedKeywords)
	}
}

func TestHeuristic_ClassifyIsDeterministic(t *testing.T) {
	h := NewHeuristic(logger.NewNop())
	text := "#sponsored video, use my code, promo code inside"

	first := h.Classify(text)
	for i := 0; i < 5; i++ {
		again := h.Classify(text)
		if again.Sponsored != first.Sponsored || again.DetectedKeywords != first.DetectedKeywords {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestHeuristic_EmptyTextIsFlagged(t *testing.T) {
	h := NewHeuristic(logger.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		result := h.Classify(text)
		if result.Sponsored {
			t.Errorf("Classify(%q) reported sponsored", text)
		}
		if result.AnalysisError == "" {
			t.Errorf("Classify(%q) missing AnalysisError", text)
		}
	}
}

func TestHeuristic_SponsoredAlwaysHasEvidence(t *testing.T) {
	h := NewHeuristic(logger.NewNop())

	texts := []string{
		"#ad",
		"برعاية الشركة",
		"sponsored by Acme and in partnership with Globex",
	}
	for _, text := range texts {
		result := h.Classify(text)
		if result.Sponsored && !result.HasEvidence() {
			t.Errorf("Classify(%q) sponsored without evidence", text)
		}
	}
}

func TestHeuristic_PhraseCount(t *testing.T) {
	h := NewHeuristic(logger.NewNop())
	if h.PhraseCount() != len(sponsorshipPhrases) {
		t.Errorf("PhraseCount = %d, want %d", h.PhraseCount(), len(sponsorshipPhrases))
	}
}
