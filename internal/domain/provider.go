package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Generator synthesizes an answer from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// GenerationResult carries the model output and token usage.
type GenerationResult struct {
	Answer           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
