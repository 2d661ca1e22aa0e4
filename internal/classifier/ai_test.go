package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/ytlens/sponsorlens/internal/cache"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
)

type mockProvider struct {
	reply string
	err   error
	calls int
}

func (m *mockProvider) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func newTestAI(p *mockProvider) *AI {
	return NewAI(p, cache.NewMemory(), nil, logger.NewNop())
}

func TestAIClassify_ParsesProviderReply(t *testing.T) {
	provider := &mockProvider{reply: `Sponsored: yes
Advertiser: NordVPN
Product: VPN subscription
Keywords: use code
Country: US`}
	ai := newTestAI(provider)

	result := ai.Classify(context.Background(), "use code NORD for 70% off", "Tech review")

	if result.Method != domain.MethodAI {
		t.Errorf("Method = %q, want %q", result.Method, domain.MethodAI)
	}
	if !result.Sponsored {
		t.Error("expected sponsored verdict")
	}
	if result.AdvertiserName != "NordVPN" {
		t.Errorf("AdvertiserName = %q", result.AdvertiserName)
	}
	if result.CountryGuess != "US" {
		t.Errorf("CountryGuess = %q", result.CountryGuess)
	}
	if result.AnalysisError != "" {
		t.Errorf("AnalysisError = %q, want empty", result.AnalysisError)
	}
	if result.ClassifiedAt == nil {
		t.Error("ClassifiedAt not set")
	}
}

func TestAIClassify_CacheSavesRepeatCalls(t *testing.T) {
	provider := &mockProvider{reply: "Not sponsored."}
	ai := newTestAI(provider)

	text := "identical comment text posted twice"
	first := ai.Classify(context.Background(), text, "")
	second := ai.Classify(context.Background(), text, "")

	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	if first.Sponsored != second.Sponsored {
		t.Error("cached reply parsed to a different verdict")
	}
}

func TestAIClassify_DistinctTextsEachCall(t *testing.T) {
	provider := &mockProvider{reply: "Not sponsored."}
	ai := newTestAI(provider)

	ai.Classify(context.Background(), "first comment", "")
	ai.Classify(context.Background(), "second comment", "")

	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestAIClassify_ProviderFailureFlagsNotFails(t *testing.T) {
	provider := &mockProvider{err: errors.New("quota exceeded")}
	ai := newTestAI(provider)

	result := ai.Classify(context.Background(), "some text", "")

	if result.Sponsored {
		t.Error("provider failure produced a sponsored verdict")
	}
	if result.AnalysisError != "classifier provider: quota exceeded" {
		t.Errorf("AnalysisError = %q", result.AnalysisError)
	}
}

func TestAIClassify_ProviderFailureNotCached(t *testing.T) {
	provider := &mockProvider{err: errors.New("transient")}
	ai := newTestAI(provider)

	ai.Classify(context.Background(), "retryable text", "")
	provider.err = nil
	provider.reply = "Not sponsored."
	result := ai.Classify(context.Background(), "retryable text", "")

	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (failure must not poison the cache)", provider.calls)
	}
	if result.AnalysisError != "" {
		t.Errorf("AnalysisError = %q after recovery", result.AnalysisError)
	}
}

func TestAIClassify_EmptyText(t *testing.T) {
	provider := &mockProvider{}
	ai := newTestAI(provider)

	result := ai.Classify(context.Background(), "   ", "title only")

	if result.AnalysisError != "no text available for analysis" {
		t.Errorf("AnalysisError = %q", result.AnalysisError)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for empty text", provider.calls)
	}
}

func TestAIClassify_SponsoredWithoutEvidenceFlagged(t *testing.T) {
	provider := &mockProvider{reply: `Sponsored: yes
Advertiser: none
Product: none
Keywords: none`}
	ai := newTestAI(provider)

	result := ai.Classify(context.Background(), "ambiguous text", "")

	if !result.Sponsored {
		t.Fatal("verdict dropped")
	}
	if result.AnalysisError != "sponsored verdict without supporting evidence" {
		t.Errorf("AnalysisError = %q", result.AnalysisError)
	}
}

func TestAIClassify_UnparseableReplyFlagged(t *testing.T) {
	provider := &mockProvider{reply: "I am not able to help with that."}
	ai := newTestAI(provider)

	result := ai.Classify(context.Background(), "some text", "")

	if result.Sponsored {
		t.Error("unparseable reply produced a verdict")
	}
	if result.AnalysisError == "" {
		t.Error("unparseable reply not flagged")
	}
}
