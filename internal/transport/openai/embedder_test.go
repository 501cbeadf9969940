package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

func newEmbedderServer(t *testing.T, handler http.HandlerFunc) *Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbedder(&EmbedderConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-small",
		Dimensions: 3,
		Logger:     zap.NewNop(),
	})
}

func TestEmbed(t *testing.T) {
	var gotReq map[string]any

	embedder := newEmbedderServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("got path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("got auth %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.1, 0.2, 0.3]}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 5, "total_tokens": 5}
		}`))
	})

	res, err := embedder.Embed(context.Background(), "two bed flat in Ikoyi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("got embedding %v", res.Embedding)
	}
	if res.TotalTokens != 5 || res.PromptTokens != 5 {
		t.Errorf("got usage prompt=%d total=%d", res.PromptTokens, res.TotalTokens)
	}
	if gotReq["model"] != "text-embedding-3-small" {
		t.Errorf("got model %v", gotReq["model"])
	}
	if dims, ok := gotReq["dimensions"].(float64); !ok || dims != 3 {
		t.Errorf("got dimensions %v", gotReq["dimensions"])
	}
}

func TestEmbed_APIErrorWrapsSentinel(t *testing.T) {
	embedder := newEmbedderServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
	})

	_, err := embedder.Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbed_EmptyData(t *testing.T) {
	embedder := newEmbedderServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [], "usage": {"total_tokens": 0}}`))
	})

	_, err := embedder.Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail": "index not ready"}`)); got != "index not ready" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`{"error": "other"}`)); got != "" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("got %q", got)
	}
}
