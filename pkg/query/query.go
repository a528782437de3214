// Package query provides fluent, per-operation builders over the record
// store. Builders are persistent values: every setter returns a new
// instance, so two routes built from a shared prefix never interfere.
//
// A Service is bound to a store connection and a calling module's
// identity; collection names are namespaced once at factory-call time.
package query

import (
	"errors"
	"strings"

	"github.com/lifeforge/forge/pkg/schema"
	"github.com/lifeforge/forge/pkg/store"
)

var (
	// ErrNoCollection is returned by Execute when the builder was not
	// produced by a collection factory.
	ErrNoCollection = errors.New("query: collection key is not set")

	// ErrNoID is returned by Execute on id-addressed operations (GetOne,
	// Update, Delete) when no id was provided.
	ErrNoID = errors.New("query: record id is not set")

	// ErrNoData is returned by Create.Execute when no data was provided.
	ErrNoData = errors.New("query: create data is empty")

	// ErrNotFound mirrors the store's not-found error for callers that
	// don't import pkg/store directly.
	ErrNotFound = store.ErrNotFound
)

// Service creates query builders bound to a store connection and a
// module identity.
type Service struct {
	store    store.Store
	moduleID string
}

// NewService binds a store connection to a calling module's identity.
// The module identity drives collection-name namespacing.
func NewService(st store.Store, moduleID string) *Service {
	return &Service{store: st, moduleID: moduleID}
}

// ModuleID returns the module identity the service is scoped to.
func (s *Service) ModuleID() string {
	return s.moduleID
}

// Collection resolves a module-local collection name to its namespaced
// key and returns an operation factory for it. Resolution happens here,
// once, not per execute.
func (s *Service) Collection(name string) *Collection {
	return &Collection{
		store: s.store,
		key:   schema.ResolveCollection(name, s.moduleID),
	}
}

// Collection is an operation factory bound to a resolved collection key.
type Collection struct {
	store store.Store
	key   string
}

// Key returns the resolved, namespaced collection key.
func (c *Collection) Key() string {
	return c.key
}

func (c *Collection) Create() *Create {
	return &Create{store: c.store, collection: c.key}
}

func (c *Collection) GetOne() *GetOne {
	return &GetOne{store: c.store, collection: c.key}
}

func (c *Collection) GetList() *GetList {
	return &GetList{store: c.store, collection: c.key}
}

func (c *Collection) GetFullList() *GetFullList {
	return &GetFullList{store: c.store, collection: c.key}
}

func (c *Collection) GetFirstListItem() *GetFirstListItem {
	return &GetFirstListItem{store: c.store, collection: c.key}
}

func (c *Collection) Update() *Update {
	return &Update{store: c.store, collection: c.key}
}

func (c *Collection) Delete() *Delete {
	return &Delete{store: c.store, collection: c.key}
}

// readState is the shared filter/sort/fields/expand accumulation for
// read operations.
type readState struct {
	conds  []Condition
	sort   []string
	fields []string
	expand []string
}

func (r readState) clone() readState {
	return readState{
		conds:  append([]Condition(nil), r.conds...),
		sort:   append([]string(nil), r.sort...),
		fields: append([]string(nil), r.fields...),
		expand: append([]string(nil), r.expand...),
	}
}

func (r readState) compile() store.Query {
	filter, params := compileFilter(r.conds)
	return store.Query{
		Filter: filter,
		Params: params,
		Sort:   strings.Join(r.sort, ", "),
		Fields: strings.Join(r.fields, ","),
		Expand: strings.Join(r.expand, ","),
	}
}
