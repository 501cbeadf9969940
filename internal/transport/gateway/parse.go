package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// parseEmbeddingPayload normalizes an embedding response. Accepted shapes,
// tried in priority order:
//
//  1. bare vector:            [0.1, 0.2, ...]
//  2. named vector field:     {"embedding": [...]} or {"vector": [...]}
//  3. batch-shaped object:    {"data": [{"embedding": [...]}, ...]}
//
// Only when no rule matches is the payload rejected.
func parseEmbeddingPayload(raw json.RawMessage) ([]float32, error) {
	var bare []float32
	if err := json.Unmarshal(raw, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	var named struct {
		Embedding []float32 `json:"embedding"`
		Vector    []float32 `json:"vector"`
	}
	if err := json.Unmarshal(raw, &named); err == nil {
		if len(named.Embedding) > 0 {
			return named.Embedding, nil
		}
		if len(named.Vector) > 0 {
			return named.Vector, nil
		}
	}

	var batch struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &batch); err == nil &&
		len(batch.Data) > 0 && len(batch.Data[0].Embedding) > 0 {
		return batch.Data[0].Embedding, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnrecognizedShape, truncateForError(raw))
}

// parseGenerationPayload normalizes a generation response. Accepted shapes,
// tried in priority order:
//
//  1. bare string:      "answer text"
//  2. output field:     {"output": "answer text"}
//  3. choices list:     {"choices": [{"text": "..."}]} or
//                       {"choices": [{"message": {"content": "..."}}]}
//
// When nothing matches, the raw serialization is returned rather than
// failing the request: a generated answer in an unknown envelope still
// beats no answer.
func parseGenerationPayload(raw json.RawMessage) string {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && bare != "" {
		return bare
	}

	var output struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &output); err == nil && output.Output != "" {
		return output.Output
	}

	var choices struct {
		Choices []struct {
			Text    string `json:"text"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &choices); err == nil && len(choices.Choices) > 0 {
		if c := choices.Choices[0]; c.Text != "" {
			return c.Text
		} else if c.Message.Content != "" {
			return c.Message.Content
		}
	}

	return strings.TrimSpace(string(raw))
}

func truncateForError(raw json.RawMessage) string {
	const limit = 200
	s := string(raw)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
