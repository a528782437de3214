package query

import (
	"context"

	"github.com/lifeforge/forge/pkg/store"
)

// Update applies a partial update to a record by id.
type Update struct {
	store      store.Store
	collection string
	id         string
	data       map[string]any
}

// ID sets the record id. Returns a new builder.
func (b Update) ID(id string) *Update {
	b.id = id
	return &b
}

// Data merges fields into the pending update. Returns a new builder.
func (b Update) Data(data map[string]any) *Update {
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
func (b Update) Field(name string, value any) *Update {
	return b.Data(map[string]any{name: value})
}

// Execute applies the update and returns the updated record.
func (b *Update) Execute(ctx context.Context) (store.Record, error) {
	if b.collection == "" {
		return nil, ErrNoCollection
	}
	if b.id == "" {
		return nil, ErrNoID
	}
	return b.store.Update(ctx, b.collection, b.id, b.data)
}
