package property

import (
	"context"
	"fmt"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// KeyPrefix namespaces catalog hashes. The batch indexer writes them;
// this repository only reads.
const KeyPrefix = domain.KeyPrefix + "property:"

// store is the consumer interface for catalog reads (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo reads property records from catalog hashes.
type Repo struct {
	store store
}

// New creates a property repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get fetches one property record. A missing key yields
// domain.ErrPropertyNotFound; HGETALL on a missing key returns an empty map,
// so emptiness is the existence check.
func (r *Repo) Get(ctx context.Context, id string) (domain.Property, error) {
	fields, err := r.store.HGetAll(ctx, KeyPrefix+id)
	if err != nil {
		return domain.Property{}, fmt.Errorf("get property %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Property{}, fmt.Errorf("property %s: %w", id, domain.ErrPropertyNotFound)
	}
	return propertyFromFields(id, fields), nil
}
