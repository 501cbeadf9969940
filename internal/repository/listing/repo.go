// Package listing retrieves similarity-ranked context documents from the
// vector index maintained by the batch indexer.
package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/db"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// propertyIDField is the index field carrying the owning property id.
const propertyIDField = "property_id"

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs KNN retrieval over the listings index.
type Repo struct {
	store      store
	indexName  string
	dimensions int
}

// New creates a retrieval repository bound to one index. dimensions is the
// index's configured vector dimension.
func New(s store, indexName string, dimensions int) *Repo {
	return &Repo{store: s, indexName: indexName, dimensions: dimensions}
}

// Search returns up to k context documents ordered by descending similarity.
// A query vector whose length differs from the index dimension fails the
// call with domain.ErrVectorDimMismatch before any round-trip; the store
// would otherwise silently match nothing.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.ContextDocument, error) {
	if r.dimensions > 0 && len(vector) != r.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d: %w",
			len(vector), r.dimensions, domain.ErrVectorDimMismatch)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName,
		Vector:    vector,
		K:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	docs := make([]domain.ContextDocument, 0, len(res.Entries))
	for _, e := range res.Entries {
		docs = append(docs, documentFromEntry(e))
	}
	return docs, nil
}

// documentFromEntry maps a search hit onto a context document. Every stored
// field except the id lands in the metadata bag; the snippet field is what
// assembly renders, the rest rides along for the raw-serialization fallback.
func documentFromEntry(e db.SearchEntry) domain.ContextDocument {
	doc := domain.ContextDocument{
		Score:    e.Score,
		Metadata: make(map[string]string, len(e.Fields)),
	}
	for name, value := range e.Fields {
		if name == propertyIDField {
			doc.PropertyID = value
			continue
		}
		doc.Metadata[name] = value
	}
	if doc.PropertyID == "" {
		// Fall back to the key suffix: listing:{property_id}:{chunk}
		doc.PropertyID = propertyIDFromKey(e.Key)
	}
	return doc
}

func propertyIDFromKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
