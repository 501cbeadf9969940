package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces. Consumers take
// the narrow sub-interfaces; the facade exists for the composition root.
// The vector index and catalog hashes are written by the batch indexer, so
// this service's surface is read-mostly: hash reads, KNN search, and the
// key-value ops backing the embedding cache.
type Store interface {
	Pinger
	HashStore
	KVStore
	VectorSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based reads over catalog records.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// VectorSearcher provides KNN search over the FT index maintained by the
// batch indexer.
type VectorSearcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
