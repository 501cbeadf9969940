package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	chatuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/chat"
	healthuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/health"
)

// --- Mocks ---

type mockEmbedder struct{ err error }

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

type mockRetriever struct{ docs []domain.ContextDocument }

func (m *mockRetriever) Search(context.Context, []float32, int) ([]domain.ContextDocument, error) {
	return m.docs, nil
}

type mockProperties struct {
	prop domain.Property
	err  error
}

func (m *mockProperties) Get(context.Context, string) (domain.Property, error) {
	if m.err != nil {
		return domain.Property{}, m.err
	}
	return m.prop, nil
}

type mockGenerator struct {
	answer string
	err    error
}

func (m *mockGenerator) Generate(context.Context, string) (domain.GenerationResult, error) {
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Answer: m.answer}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type serverMocks struct {
	embed *mockEmbedder
	retr  *mockRetriever
	props *mockProperties
	gen   *mockGenerator
	ping  *mockPinger
}

func newTestRouter(t *testing.T) (chi.Router, *serverMocks) {
	t.Helper()
	m := &serverMocks{
		embed: &mockEmbedder{},
		retr:  &mockRetriever{},
		props: &mockProperties{err: domain.ErrPropertyNotFound},
		gen:   &mockGenerator{answer: "a grounded answer"},
		ping:  &mockPinger{},
	}

	chat := chatuc.New(m.embed, m.retr, m.props, m.gen, chatuc.Config{
		MatchKMax:       12,
		EmbedTimeout:    time.Second,
		RetrieveTimeout: time.Second,
		LookupTimeout:   time.Second,
		GenerateTimeout: time.Second,
	})
	health := healthuc.New(m.ping, nil)
	srv := NewServer(chat, m.props, health, zap.NewNop())

	r := chi.NewRouter()
	srv.Routes(r)
	return r, m
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v: %s", err, rec.Body.String())
	}
	return body
}

// --- Chat ---

func TestChat(t *testing.T) {
	r, m := newTestRouter(t)
	m.retr.docs = []domain.ContextDocument{
		{PropertyID: "p1", Metadata: map[string]string{domain.SnippetField: "Two-bed flat"}},
	}

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": "what is available?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}

	var body ChatResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Answer != "a grounded answer" {
		t.Errorf("got answer %q", body.Answer)
	}
	if body.RetrievedCount != 1 {
		t.Errorf("got retrievedCount %d", body.RetrievedCount)
	}
	if len(body.ContextSummary) != 1 || body.ContextSummary[0] != "Context doc 1: Two-bed flat" {
		t.Errorf("got contextSummary %q", body.ContextSummary)
	}
}

func TestChat_EmptySummaryIsArrayNotNull(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": "q"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"contextSummary":[]`) {
		t.Errorf("empty summary not serialized as []: %s", rec.Body.String())
	}
}

func TestChat_InvalidBody(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != CodeBadRequest {
		t.Errorf("got code %q", body.Code)
	}
}

func TestChat_EmptyQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": "   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != CodeBadRequest {
		t.Errorf("got code %q", body.Code)
	}
}

func TestChat_EmbeddingFailure(t *testing.T) {
	r, m := newTestRouter(t)
	m.embed.err = errors.New("rate limited")

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": "q"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != CodeEmbeddingFailed {
		t.Errorf("got code %q", body.Code)
	}
	if strings.Contains(body.Message, "rate limited") {
		t.Errorf("provider detail leaked into response: %q", body.Message)
	}
}

func TestChat_GenerationFailure(t *testing.T) {
	r, m := newTestRouter(t)
	m.gen.err = errors.New("model overloaded")

	rec := doJSON(t, r, http.MethodPost, "/v1/chat", `{"query": "q"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != CodeGenerationFailed {
		t.Errorf("got code %q", body.Code)
	}
}

// --- Properties ---

func TestPropertyByID(t *testing.T) {
	r, m := newTestRouter(t)
	m.props.err = nil
	m.props.prop = domain.Property{ID: "p1", Title: "Ikoyi flat", InvestmentIndex: f64(8.4)}

	rec := doJSON(t, r, http.MethodGet, "/v1/properties/p1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}

	var body PropertyDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != "p1" || body.Title != "Ikoyi flat" {
		t.Errorf("got body %+v", body)
	}
	if body.InvestmentIndex == nil || *body.InvestmentIndex != 8.4 {
		t.Errorf("got investment index %v", body.InvestmentIndex)
	}
	if body.MarketSentiment != nil {
		t.Errorf("absent score serialized: %v", *body.MarketSentiment)
	}
}

func TestPropertyByID_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/properties/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != CodePropertyNotFound {
		t.Errorf("got code %q", body.Code)
	}
}

func TestPropertyByID_StoreError(t *testing.T) {
	r, m := newTestRouter(t)
	m.props.err = errors.New("connection reset")

	rec := doJSON(t, r, http.MethodGet, "/v1/properties/p1", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != CodeInternalError {
		t.Errorf("got code %q", body.Code)
	}
	if strings.Contains(body.Message, "connection reset") {
		t.Errorf("store detail leaked into response: %q", body.Message)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var body HealthResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("got body %+v", body)
	}
}

func TestHealth_Degraded(t *testing.T) {
	r, m := newTestRouter(t)
	m.ping.err = errors.New("connection refused")

	rec := doJSON(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d", rec.Code)
	}

	var body HealthResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "degraded" || body.Checks["database"] != "error" {
		t.Errorf("got body %+v", body)
	}
}

func f64(v float64) *float64 { return &v }
