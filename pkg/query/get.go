package query

import (
	"context"

	"github.com/lifeforge/forge/pkg/store"
)

// GetOne fetches a single record by id.
type GetOne struct {
	store      store.Store
	collection string
	id         string
	state      readState
}

// ID sets the record id. Returns a new builder.
func (b GetOne) ID(id string) *GetOne {
	b.id = id
	return &b
}

// Fields narrows the returned record to the given fields. Returns a new
// builder; the original is unchanged.
func (b GetOne) Fields(fields ...string) *GetOne {
	b.state = b.state.clone()
	b.state.fields = append(b.state.fields, fields...)
	return &b
}

// Expand resolves the given relation fields into nested records.
// Returns a new builder.
func (b GetOne) Expand(relations ...string) *GetOne {
	b.state = b.state.clone()
	b.state.expand = append(b.state.expand, relations...)
	return &b
}

// Execute fetches the record. Fails with ErrNoID when no id was set and
// store.ErrNotFound when the id does not exist.
func (b *GetOne) Execute(ctx context.Context) (store.Record, error) {
	if b.collection == "" {
		return nil, ErrNoCollection
	}
	if b.id == "" {
		return nil, ErrNoID
	}
	return b.store.GetOne(ctx, b.collection, b.id, b.state.compile())
}

// GetFirstListItem fetches the first record matching the filter.
type GetFirstListItem struct {
	store      store.Store
	collection string
	state      readState
}

// Filter appends conditions, joined with && at the top level.
// Returns a new builder.
func (b GetFirstListItem) Filter(conds ...Condition) *GetFirstListItem {
	b.state = b.state.clone()
	b.state.conds = append(b.state.conds, conds...)
	return &b
}

// Sort appends sort fields; a "-" prefix sorts descending.
// Returns a new builder.
func (b GetFirstListItem) Sort(fields ...string) *GetFirstListItem {
	b.state = b.state.clone()
	b.state.sort = append(b.state.sort, fields...)
	return &b
}

// Fields narrows the returned record. Returns a new builder.
func (b GetFirstListItem) Fields(fields ...string) *GetFirstListItem {
	b.state = b.state.clone()
	b.state.fields = append(b.state.fields, fields...)
	return &b
}

// Expand resolves relation fields. Returns a new builder.
func (b GetFirstListItem) Expand(relations ...string) *GetFirstListItem {
	b.state = b.state.clone()
	b.state.expand = append(b.state.expand, relations...)
	return &b
}

// Execute fetches the first matching record, or store.ErrNotFound.
func (b *GetFirstListItem) Execute(ctx context.Context) (store.Record, error) {
	if b.collection == "" {
		return nil, ErrNoCollection
	}
	return b.store.GetFirstListItem(ctx, b.collection, b.state.compile())
}
