// Package chat implements the assistant query pipeline: validate, embed,
// retrieve, look up the property, assemble the prompt, generate, respond.
//
// The failure policy is two-tier. Embedding and generation are fatal: there
// is no groundable or producible answer without them. Retrieval and property
// lookup degrade to empty context so a vector-store outage dims the answer
// instead of taking the chat feature down.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/logger"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/metrics"
)

// Config bounds the pipeline's external calls and retrieval breadth.
type Config struct {
	MatchKMax       int
	EmbedTimeout    time.Duration
	RetrieveTimeout time.Duration
	LookupTimeout   time.Duration
	GenerateTimeout time.Duration
}

// Service orchestrates one question per call. It is stateless; conversation
// continuity is the caller re-sending prior turns.
type Service struct {
	embed      Embedder
	retriever  Retriever
	properties PropertyReader
	generate   Generator
	cfg        Config
}

// New creates a chat service.
func New(embed Embedder, retriever Retriever, properties PropertyReader, generate Generator, cfg Config) *Service {
	if cfg.MatchKMax <= 0 {
		cfg.MatchKMax = 12
	}
	return &Service{
		embed:      embed,
		retriever:  retriever,
		properties: properties,
		generate:   generate,
		cfg:        cfg,
	}
}

// Ask runs the full pipeline for one question. Stages run strictly
// sequentially; each depends on the previous stage's output.
func (s *Service) Ask(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	log := logger.FromContext(ctx)

	if err := req.Validate(); err != nil {
		return domain.ChatResponse{}, err
	}
	k := s.effectiveK(req.MatchK)

	vector, err := s.embedQuery(ctx, req.Query)
	if err != nil {
		return domain.ChatResponse{}, err
	}

	docs := s.retrieveContext(ctx, log, vector, k)

	prop := s.lookupProperty(ctx, log, req.PropertyID)

	contextLines := assembleContext(prop, docs, req.RecentConversation(), k)
	prompt := buildPrompt(contextLines, req.Query)

	answer, err := s.generateAnswer(ctx, prompt)
	if err != nil {
		return domain.ChatResponse{}, err
	}

	summary := contextLines
	if len(summary) > domain.MaxContextSummary {
		summary = summary[:domain.MaxContextSummary]
	}

	return domain.ChatResponse{
		Answer:         answer,
		ContextSummary: summary,
		RetrievedCount: len(docs),
	}, nil
}

// effectiveK resolves the retrieval breadth: request override when positive,
// otherwise the default, always capped by configuration.
func (s *Service) effectiveK(requested int) int {
	k := requested
	if k <= 0 {
		k = domain.DefaultMatchK
	}
	if k > s.cfg.MatchKMax {
		k = s.cfg.MatchKMax
	}
	return k
}

// embedQuery vectorizes the question. Any failure here is fatal: an answer
// that could not possibly be grounded is denied, not improvised.
func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProviderError) {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return nil, fmt.Errorf("embed query: %s: %w", err, domain.ErrEmbeddingProviderError)
	}
	return res.Embedding, nil
}

// retrieveContext runs the similarity search, degrading to zero documents on
// any failure. A dimension mismatch is logged at Error level — that is a
// deployment bug, not an outage — but still degrades per the failure policy.
func (s *Service) retrieveContext(
	ctx context.Context, log *zap.Logger, vector []float32, k int,
) []domain.ContextDocument {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RetrieveTimeout)
	defer cancel()

	docs, err := s.retriever.Search(ctx, vector, k)
	if err != nil {
		metrics.RetrievalDegradedTotal.WithLabelValues("retrieval").Inc()
		if errors.Is(err, domain.ErrVectorDimMismatch) {
			log.Error("Retrieval dimension mismatch, continuing without context", zap.Error(err))
		} else {
			log.Warn("Retrieval failed, continuing without context", zap.Error(err))
		}
		return nil
	}
	return docs
}

// lookupProperty fetches the direct property record when an id was supplied.
// Absent id, missing record, and lookup errors all yield nil — a normal
// path, not a propagated error.
func (s *Service) lookupProperty(ctx context.Context, log *zap.Logger, id string) *domain.Property {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	prop, err := s.properties.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			log.Info("Property not found, continuing without direct context",
				zap.String("property_id", id))
		} else {
			metrics.RetrievalDegradedTotal.WithLabelValues("lookup").Inc()
			log.Warn("Property lookup failed, continuing without direct context",
				zap.String("property_id", id), zap.Error(err))
		}
		return nil
	}
	return &prop
}

// generateAnswer calls the generation provider. Failure is fatal and carries
// a sentinel distinct from embedding failure so the transport layer can
// report it as an upstream (502-class) condition.
func (s *Service) generateAnswer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	res, err := s.generate.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationProviderError) {
			return "", fmt.Errorf("generate answer: %w", err)
		}
		return "", fmt.Errorf("generate answer: %s: %w", err, domain.ErrGenerationProviderError)
	}
	return res.Answer, nil
}
