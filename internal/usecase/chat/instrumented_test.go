package chat

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrumentedEmbedder(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	inner := &mockEmbedder{vec: []float32{0.1, 0.2}}
	embedder := NewInstrumentedEmbedder(inner, "openai", "text-embedding-3-small", zap.New(core))

	res, err := embedder.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("got %v", res.Embedding)
	}
	if logs.FilterMessage("Embedding request completed").Len() != 1 {
		t.Errorf("missing completion log, got: %v", logs.All())
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	innerErr := errors.New("rate limited")
	embedder := NewInstrumentedEmbedder(&mockEmbedder{err: innerErr}, "openai", "m", zap.New(core))

	_, err := embedder.Embed(context.Background(), "q")
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Errorf("missing failure log, got: %v", logs.All())
	}
}

func TestInstrumentedGenerator(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gen := NewInstrumentedGenerator(&mockGenerator{answer: "a"}, "openai", "gpt-4o-mini", zap.New(core))

	res, err := gen.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "a" {
		t.Errorf("got %q", res.Answer)
	}
	if logs.FilterMessage("Generation request completed").Len() != 1 {
		t.Errorf("missing completion log, got: %v", logs.All())
	}
}

func TestInstrumentedGenerator_Error(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	innerErr := errors.New("model overloaded")
	gen := NewInstrumentedGenerator(&mockGenerator{err: innerErr}, "openai", "m", zap.New(core))

	_, err := gen.Generate(context.Background(), "p")
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if logs.FilterMessage("Generation request failed").Len() != 1 {
		t.Errorf("missing failure log, got: %v", logs.All())
	}
}
