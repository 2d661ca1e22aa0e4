// Package gemini adapts the Google Gemini API to the classifier's
// completion provider interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ytlens/sponsorlens/internal/logger"
)

// ErrEmptyReply indicates the model answered with no usable text content.
var ErrEmptyReply = errors.New("gemini returned no content candidates")

// Config carries the Gemini connection settings.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls a Gemini generative model and returns its text reply.
type Client struct {
	model   *genai.GenerativeModel
	closer  func() error
	timeout time.Duration
	logger  logger.Logger
}

// NewClient creates a Gemini client bound to one model. The caller owns the
// API key validation; an empty key fails here rather than on first use.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	log.Info("gemini client initialized", logger.String("model", cfg.Model))

	return &Client{
		model:   client.GenerativeModel(cfg.Model),
		closer:  client.Close,
		timeout: cfg.Timeout,
		logger:  log,
	}, nil
}

// Complete sends the prompt and returns the model's text reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
