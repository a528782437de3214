package query

import (
	"context"

	"github.com/lifeforge/forge/pkg/store"
)

// Create inserts a new record.
type Create struct {
	store      store.Store
	collection string
	data       map[string]any
}

// Data merges fields into the pending record. Returns a new builder.
func (b Create) Data(data map[string]any) *Create {
	merged := make(map[string]any, len(b.data)+len(data))
	for k, v := range b.data {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	b.data = merged
	return &b
}

// Field sets a single field. Returns a new builder.
func (b Create) Field(name string, value any) *Create {
	return b.Data(map[string]any{name: value})
}

// Execute inserts the record and returns it with its generated id.
func (b *Create) Execute(ctx context.Context) (store.Record, error) {
	if b.collection == "" {
		return nil, ErrNoCollection
	}
	if len(b.data) == 0 {
		return nil, ErrNoData
	}
	return b.store.Create(ctx, b.collection, b.data)
}
