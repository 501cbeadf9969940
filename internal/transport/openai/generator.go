package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/metrics"
)

// Generator is a chat-completion provider using the OpenAI-compatible API.
// Low temperature and bounded output favor determinism over creativity,
// which is what factual real-estate answers need.
type Generator struct {
	client       *openai.Client
	model        string
	maxTokens    int
	temperature  float32
	maxRetries   int
	initialDelay time.Duration
	logger       *zap.Logger
}

// GeneratorConfig holds the generation provider settings. MaxRetries
// defaults to zero; a retried generation call doubles cost and latency, so
// it only happens when deliberately configured.
type GeneratorConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float32
	MaxRetries   int
	InitialDelay time.Duration
	Logger       *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	initialDelay := cfg.InitialDelay
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	return &Generator{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		maxRetries:   cfg.MaxRetries,
		initialDelay: initialDelay,
		logger:       cfg.Logger,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	start := time.Now()

	resp, err := g.complete(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		return domain.GenerationResult{}, parseAPIError("generation", err, domain.ErrGenerationProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty generation response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(providerName, g.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.TokensTotal.WithLabelValues(providerName, g.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.TokensTotal.WithLabelValues(providerName, g.model, "completion").Add(float64(usage.CompletionTokens))
		metrics.TokensTotal.WithLabelValues(providerName, g.model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.GenerationResult{
		Answer:           resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// complete issues the chat completion, retrying with exponential backoff
// only when maxRetries is configured above zero.
func (g *Generator) complete(
	ctx context.Context, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	var lastErr error
	delay := g.initialDelay

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying generation request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return openai.ChatCompletionResponse{}, lastErr
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
