package query

import (
	"context"

	"github.com/lifeforge/forge/pkg/store"
)

// Delete removes a record by id.
type Delete struct {
	store      store.Store
	collection string
	id         string
}

// ID sets the record id. Returns a new builder.
func (b Delete) ID(id string) *Delete {
	b.id = id
	return &b
}

// Execute removes the record.
func (b *Delete) Execute(ctx context.Context) error {
	if b.collection == "" {
		return ErrNoCollection
	}
	if b.id == "" {
		return ErrNoID
	}
	return b.store.Delete(ctx, b.collection, b.id)
}
