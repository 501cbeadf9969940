package chat

import (
	"context"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// Embedder vectorizes the user question.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever returns up to k context documents ordered by descending
// similarity.
type Retriever interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.ContextDocument, error)
}

// PropertyReader reads one catalog record.
type PropertyReader interface {
	Get(ctx context.Context, id string) (domain.Property, error)
}

// Generator synthesizes the answer from the assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
