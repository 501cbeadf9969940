// Package gateway implements embedding and generation providers against the
// in-house inference gateway. The gateway's response envelope has varied
// across versions, so both calls normalize the payload through an ordered
// set of shape-detection rules instead of a fixed schema.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/metrics"
)

const providerName = "gateway"

// Client talks to the inference gateway over plain JSON HTTP. The typed
// OpenAI SDK cannot represent the envelope drift this provider tolerates.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	embeddingModel string
	generationModel string
	maxTokens      int
	temperature    float32
	logger         *zap.Logger
}

// Config holds gateway connection settings.
type Config struct {
	BaseURL         string
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
	MaxTokens       int
	Temperature     float32
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// NewClient creates a gateway provider.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient:      httpClient,
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		embeddingModel:  cfg.EmbeddingModel,
		generationModel: cfg.GenerationModel,
		maxTokens:       cfg.MaxTokens,
		temperature:     cfg.Temperature,
		logger:          log,
	}
}

// Embed implements domain.Embedder against POST /embeddings.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body := map[string]any{
		"model": c.embeddingModel,
		"input": text,
	}

	start := time.Now()
	raw, err := c.post(ctx, "/embeddings", body)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, c.embeddingModel, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%s: %w", err, domain.ErrEmbeddingProviderError)
	}

	vec, err := parseEmbeddingPayload(raw)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, c.embeddingModel, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("parse embedding payload: %w: %w", err, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, c.embeddingModel, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, c.embeddingModel).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// Generate implements domain.Generator against POST /completions.
func (c *Client) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	body := map[string]any{
		"model":       c.generationModel,
		"prompt":      prompt,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	start := time.Now()
	raw, err := c.post(ctx, "/completions", body)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, c.generationModel, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("%s: %w", err, domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, c.generationModel, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(providerName, c.generationModel).Observe(duration.Seconds())

	// Unlike embeddings, an unmatched generation shape is not an error:
	// parseGenerationPayload falls back to the raw serialization.
	return domain.GenerationResult{Answer: parseGenerationPayload(raw)}, nil
}

// HealthCheck probes the gateway root.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Gateway returned non-success status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(data)),
		)
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	return json.RawMessage(data), nil
}
