package schema

import (
	"fmt"
	"sort"
)

// Registry aggregates collection definitions from every registered module
// into a flat namespace keyed by the resolved collection key.
//
// Registration happens once at process start; the registry is immutable
// afterwards and safe for concurrent reads.
type Registry struct {
	collections map[string]Collection
	owners      map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		collections: make(map[string]Collection),
		owners:      make(map[string]string),
	}
}

// Register adds a module's collections under their namespaced keys.
// A key claimed by two modules is a startup error, not a silent overwrite.
func (r *Registry) Register(moduleID string, cols ...Collection) error {
	for _, col := range cols {
		key := ResolveCollection(col.Name, moduleID)
		if owner, taken := r.owners[key]; taken {
			return fmt.Errorf("collection key %q already registered by module %q", key, owner)
		}
		r.collections[key] = col
		r.owners[key] = moduleID
	}
	return nil
}

// Lookup returns the collection registered under the given key.
func (r *Registry) Lookup(key string) (Collection, bool) {
	col, ok := r.collections[key]
	return col, ok
}

// Resolve looks up a module-local collection name on behalf of a module.
func (r *Registry) Resolve(collection, moduleID string) (Collection, bool) {
	return r.Lookup(ResolveCollection(collection, moduleID))
}

// Keys returns all registered collection keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.collections))
	for k := range r.collections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Owner returns the module that registered the given collection key.
func (r *Registry) Owner(key string) (string, bool) {
	owner, ok := r.owners[key]
	return owner, ok
}
