package gateway

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

func TestParseEmbeddingPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []float32
	}{
		{"bare vector", `[0.1, 0.2, 0.3]`, []float32{0.1, 0.2, 0.3}},
		{"embedding field", `{"embedding": [1, 2]}`, []float32{1, 2}},
		{"vector field", `{"vector": [0.5]}`, []float32{0.5}},
		{"batch data", `{"data": [{"embedding": [9, 8]}, {"embedding": [7]}]}`, []float32{9, 8}},
		{"embedding wins over vector", `{"embedding": [1], "vector": [2]}`, []float32{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEmbeddingPayload(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEmbeddingPayload_Unrecognized(t *testing.T) {
	for _, raw := range []string{`{}`, `[]`, `{"data": []}`, `"not a vector"`, `42`} {
		_, err := parseEmbeddingPayload(json.RawMessage(raw))
		if !errors.Is(err, domain.ErrUnrecognizedShape) {
			t.Errorf("payload %s: expected ErrUnrecognizedShape, got %v", raw, err)
		}
	}
}

func TestParseEmbeddingPayload_ErrorTruncatesPayload(t *testing.T) {
	raw := `{"noise": "` + strings.Repeat("x", 500) + `"}`
	_, err := parseEmbeddingPayload(json.RawMessage(raw))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 300 {
		t.Errorf("error message carries the full payload: %d chars", len(err.Error()))
	}
}

func TestParseGenerationPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare string", `"an answer"`, "an answer"},
		{"output field", `{"output": "from output"}`, "from output"},
		{"choices text", `{"choices": [{"text": "from text"}]}`, "from text"},
		{"choices message", `{"choices": [{"message": {"content": "from message"}}]}`, "from message"},
		{"text wins over message", `{"choices": [{"text": "t", "message": {"content": "m"}}]}`, "t"},
		{"unknown envelope passes through", `{"result": "x"}`, `{"result": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseGenerationPayload(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
