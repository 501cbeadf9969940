package domain

import "encoding/json"

// SnippetField is the metadata key carrying the textual snippet of a
// retrieved document.
const SnippetField = "snippet"

// ContextDocument is one similarity-search hit used as grounding evidence.
// Metadata is a free-form bag; ordering of documents is by descending store
// similarity, tie-breaking is store-native and not guaranteed stable.
type ContextDocument struct {
	PropertyID string
	Score      float64
	Metadata   map[string]string
}

// Snippet returns the textual snippet, falling back to a serialization of
// the whole metadata bag when no snippet field is present. json.Marshal
// sorts map keys, so the fallback is deterministic.
func (d ContextDocument) Snippet() string {
	if s, ok := d.Metadata[SnippetField]; ok && s != "" {
		return s
	}
	raw, err := json.Marshal(d.Metadata)
	if err != nil {
		return ""
	}
	return string(raw)
}
