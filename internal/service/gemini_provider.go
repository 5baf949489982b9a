package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
)

// textGenerator is the single model call the provider depends on
type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: followupSystemPrompt}}},
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   120,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GeminiProvider implements FollowupProvider on top of the Gemini API
type GeminiProvider struct {
	gen        textGenerator
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	log        *logger.Logger
}

var _ FollowupProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider for the configured follow-up model
func NewGeminiProvider(ctx context.Context, cfg *config.AIConfig, log *logger.Logger) (*GeminiProvider, error) {
	if !cfg.IsEnabled() {
		return nil, errors.New("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiProvider(&genaiGenerator{client: client, model: cfg.FollowupModel}, cfg, log), nil
}

func newGeminiProvider(gen textGenerator, cfg *config.AIConfig, log *logger.Logger) *GeminiProvider {
	return &GeminiProvider{
		gen:        gen,
		timeout:    cfg.Timeout(),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay(),
		log:        log,
	}
}

// GenerateFollowup calls the model with a bounded per-attempt timeout and a
// linear backoff between attempts. A response that fails validation yields
// "" without retrying.
func (p *GeminiProvider) GenerateFollowup(ctx context.Context, answer string, topic *model.Topic, history []model.ConversationEntry) (string, error) {
	prompt := BuildFollowupPrompt(answer, topic, history)

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.retryDelay * time.Duration(attempt)):
			}
		}

		start := time.Now()
		text, err := p.call(ctx, prompt)
		if err != nil {
			lastErr = err
			p.log.Warn("gemini follow-up attempt failed", "attempt", attempt+1, "duration", time.Since(start), "error", err)
			continue
		}

		q := CleanFollowup(text)
		if !ValidFollowup(q, topic) {
			p.log.Debug("gemini follow-up rejected", "topic", topic.Name, "text", truncate(q, 50))
			return "", nil
		}
		p.log.Debug("gemini follow-up generated", "topic", topic.Name, "duration", time.Since(start))
		return q, nil
	}
	return "", fmt.Errorf("gemini follow-up: %w", lastErr)
}

func (p *GeminiProvider) call(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.gen.Generate(ctx, prompt)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
