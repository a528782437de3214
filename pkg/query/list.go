package query

import (
	"context"

	"github.com/lifeforge/forge/pkg/store"
)

// GetList fetches one page of records.
type GetList struct {
	store      store.Store
	collection string
	state      readState
	page       int
	perPage    int
}

// Filter appends conditions, joined with && at the top level.
// Returns a new builder.
func (b GetList) Filter(conds ...Condition) *GetList {
	b.state = b.state.clone()
	b.state.conds = append(b.state.conds, conds...)
	return &b
}

// Sort appends sort fields; a "-" prefix sorts descending.
// Returns a new builder.
func (b GetList) Sort(fields ...string) *GetList {
	b.state = b.state.clone()
	b.state.sort = append(b.state.sort, fields...)
	return &b
}

// Fields narrows returned records. Returns a new builder.
func (b GetList) Fields(fields ...string) *GetList {
	b.state = b.state.clone()
	b.state.fields = append(b.state.fields, fields...)
	return &b
}

// Expand resolves relation fields. Returns a new builder.
func (b GetList) Expand(relations ...string) *GetList {
	b.state = b.state.clone()
	b.state.expand = append(b.state.expand, relations...)
	return &b
}

// Page sets the 1-based page number. Returns a new builder.
func (b GetList) Page(page int) *GetList {
	b.page = page
	return &b
}

// PerPage sets the page size. Returns a new builder.
func (b GetList) PerPage(perPage int) *GetList {
	b.perPage = perPage
	return &b
}

// Execute fetches the page.
func (b *GetList) Execute(ctx context.Context) (store.ListResult, error) {
	if b.collection == "" {
		return store.ListResult{}, ErrNoCollection
	}
	return b.store.GetList(ctx, b.collection, b.page, b.perPage, b.state.compile())
}

// GetFullList fetches every record matching the filter.
type GetFullList struct {
	store      store.Store
	collection string
	state      readState
}

// Filter appends conditions, joined with && at the top level.
// Returns a new builder.
func (b GetFullList) Filter(conds ...Condition) *GetFullList {
	b.state = b.state.clone()
	b.state.conds = append(b.state.conds, conds...)
	return &b
}

// Sort appends sort fields; a "-" prefix sorts descending.
// Returns a new builder.
func (b GetFullList) Sort(fields ...string) *GetFullList {
	b.state = b.state.clone()
	b.state.sort = append(b.state.sort, fields...)
	return &b
}

// Fields narrows returned records. Returns a new builder.
func (b GetFullList) Fields(fields ...string) *GetFullList {
	b.state = b.state.clone()
	b.state.fields = append(b.state.fields, fields...)
	return &b
}

// Expand resolves relation fields. Returns a new builder.
func (b GetFullList) Expand(relations ...string) *GetFullList {
	b.state = b.state.clone()
	b.state.expand = append(b.state.expand, relations...)
	return &b
}

// Execute fetches all matching records.
func (b *GetFullList) Execute(ctx context.Context) ([]store.Record, error) {
	if b.collection == "" {
		return nil, ErrNoCollection
	}
	return b.store.GetFullList(ctx, b.collection, b.state.compile())
}
