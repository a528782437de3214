// Package schema defines collection shapes for record collections and
// aggregates them into a flat, namespaced registry at startup.
package schema

// Collection is the schema definition for one record collection.
// Collections are authored per feature module and aggregated into a
// Registry under their namespaced collection key.
type Collection struct {
	// Name is the module-local collection name (e.g., "entries").
	Name string `yaml:"collection"`

	// Fields defines the collection's data fields.
	Fields Shape `yaml:"schema"`

	// Raw holds the original YAML definition. Relation-name resolution
	// during client code generation reads target names from here rather
	// than the parsed form.
	Raw []byte `yaml:"-"`
}

// ExpandTargets returns the relation fields of the collection mapped to
// their module-local target collection names.
func (c Collection) ExpandTargets() map[string]string {
	targets := make(map[string]string)
	for name, f := range c.Fields {
		if f.IsRelation() && f.To != "" {
			targets[name] = f.To
		}
	}
	return targets
}
