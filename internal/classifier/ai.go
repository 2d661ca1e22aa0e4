package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytlens/sponsorlens/internal/cache"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/telemetry"
)

// maxPromptRunes bounds the text embedded in one prompt.
const maxPromptRunes = 4000

// Provider is the external completion API the AI classifier talks to.
// Implementations must return a distinguishable error on auth, quota, and
// network failures.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AI classifies items through the completion provider, memoizing raw
// replies in a content-addressed cache so identical text is paid for once.
type AI struct {
	provider  Provider
	cache     cache.ReplyCache
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// NewAI creates an AI classifier. The cache is required; telemetry may be
// nil.
func NewAI(provider Provider, replyCache cache.ReplyCache, tp *telemetry.Provider, log logger.Logger) *AI {
	return &AI{
		provider:  provider,
		cache:     replyCache,
		telemetry: tp,
		logger:    log,
	}
}

// Classify builds the prompt for text, obtains a reply (cached or live),
// and parses it into a structured result. It never returns an error: every
// failure mode, including provider outages and unparseable replies, lands
// in AnalysisError so a batch can carry on with its next item.
func (a *AI) Classify(ctx context.Context, text, title string) domain.ClassificationResult {
	now := time.Now()
	result := domain.ClassificationResult{
		Method:       domain.MethodAI,
		ClassifiedAt: &now,
	}

	if strings.TrimSpace(text) == "" {
		result.AnalysisError = "no text available for analysis"
		return result
	}

	reply, err := a.completeCached(ctx, text, title)
	if err != nil {
		result.AnalysisError = fmt.Sprintf("classifier provider: %v", err)
		a.logger.Warn("ai classification failed",
			logger.Error(err),
			logger.Int("text_len", len(text)),
		)
		return result
	}

	parsed := parseReply(reply)
	result.Sponsored = parsed.sponsored
	result.AdvertiserName = parsed.advertiser
	result.ProductOrService = parsed.product
	result.DetectedKeywords = parsed.keywords
	result.CountryGuess = parsed.country
	result.AnalysisError = parsed.parseError

	// A yes with nothing behind it must stay auditable.
	if result.Sponsored && !result.HasEvidence() && result.AnalysisError == "" {
		result.AnalysisError = "sponsored verdict without supporting evidence"
	}

	return result
}

// completeCached returns the provider reply for text, consulting the
// content-addressed cache first. Replies are keyed by text alone, not by
// item identity, so repeated text across items costs one call.
func (a *AI) completeCached(ctx context.Context, text, title string) (string, error) {
	if reply, ok := a.cache.Get(text); ok {
		a.telemetry.RecordProviderCall(true, 0, nil)
		a.logger.Debug("reply cache hit", logger.String("key", cache.Key(text)))
		return reply, nil
	}

	prompt := BuildPrompt(truncateForPrompt(text, maxPromptRunes), title)

	start := time.Now()
	reply, err := a.provider.Complete(ctx, prompt)
	a.telemetry.RecordProviderCall(false, time.Since(start), err)
	if err != nil {
		return "", err
	}

	a.cache.Put(text, reply)
	return reply, nil
}
