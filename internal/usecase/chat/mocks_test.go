package chat

import (
	"context"
	"time"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	lastIn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastIn = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

type mockRetriever struct {
	docs  []domain.ContextDocument
	err   error
	calls int
	lastK int
}

func (m *mockRetriever) Search(_ context.Context, _ []float32, k int) ([]domain.ContextDocument, error) {
	m.calls++
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

type mockProperties struct {
	prop   domain.Property
	err    error
	calls  int
	lastID string
}

func (m *mockProperties) Get(_ context.Context, id string) (domain.Property, error) {
	m.calls++
	m.lastID = id
	if m.err != nil {
		return domain.Property{}, m.err
	}
	return m.prop, nil
}

type mockGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Answer: m.answer}, nil
}

func testConfig() Config {
	return Config{
		MatchKMax:       12,
		EmbedTimeout:    time.Second,
		RetrieveTimeout: time.Second,
		LookupTimeout:   time.Second,
		GenerateTimeout: time.Second,
	}
}

func newTestService() (*Service, *mockEmbedder, *mockRetriever, *mockProperties, *mockGenerator) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	retr := &mockRetriever{}
	props := &mockProperties{err: domain.ErrPropertyNotFound}
	gen := &mockGenerator{answer: "a grounded answer"}
	svc := New(embed, retr, props, gen, testConfig())
	return svc, embed, retr, props, gen
}

func snippetDoc(propertyID, snippet string) domain.ContextDocument {
	return domain.ContextDocument{
		PropertyID: propertyID,
		Metadata:   map[string]string{domain.SnippetField: snippet},
	}
}

func f64(v float64) *float64 { return &v }
