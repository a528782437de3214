// Package store defines the record-store contract the query layer
// compiles to, plus a memory backend for tests and a PostgreSQL backend
// for production. Records are schemaless documents addressed by a
// namespaced collection key; field shapes are enforced upstream by the
// schema registry.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record matches the given id or filter.
	ErrNotFound = errors.New("store: record not found")

	// ErrBadFilter is returned when a filter expression cannot be parsed.
	ErrBadFilter = errors.New("store: malformed filter expression")
)

// Record is one stored document. The "id" key is always present on
// records returned by a store; expanded relations live under "expand".
type Record map[string]any

// ID returns the record's id, or an empty string if unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// GetString returns the named field as a string.
func (r Record) GetString(field string) string {
	s, _ := r[field].(string)
	return s
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Query carries the compiled query state for read operations.
// Filter uses the placeholder grammar `field op {:name}`; every value is
// bound through Params, never interpolated.
type Query struct {
	Filter string
	Params map[string]any
	Sort   string
	Fields string
	Expand string
}

// ListResult is one page of records.
type ListResult struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

// Store is the record-store interface. Implementations must treat the
// collection key as opaque and must never interpolate filter params into
// query strings.
type Store interface {
	// Create inserts a record and returns it with its generated id.
	Create(ctx context.Context, collection string, data map[string]any) (Record, error)

	// GetOne fetches a record by id.
	// Returns ErrNotFound if the id does not exist.
	GetOne(ctx context.Context, collection, id string, q Query) (Record, error)

	// GetList fetches one page of records matching the query.
	GetList(ctx context.Context, collection string, page, perPage int, q Query) (ListResult, error)

	// GetFullList fetches all records matching the query.
	GetFullList(ctx context.Context, collection string, q Query) ([]Record, error)

	// GetFirstListItem fetches the first record matching the query.
	// Returns ErrNotFound when nothing matches.
	GetFirstListItem(ctx context.Context, collection string, q Query) (Record, error)

	// Update applies a partial update to a record by id.
	Update(ctx context.Context, collection, id string, data map[string]any) (Record, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, collection, id string) error

	// Exists reports whether a record id exists in a collection.
	Exists(ctx context.Context, collection, id string) (bool, error)
}
