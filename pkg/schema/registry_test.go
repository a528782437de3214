package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/pkg/schema"
)

func entriesCollection() schema.Collection {
	return schema.Collection{
		Name: "entries",
		Fields: schema.Shape{
			"title": {Type: schema.FieldTypeText, Required: true},
			"difficulty": {
				Type:   schema.FieldTypeSelect,
				Values: []string{"easy", "medium", "hard"},
			},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("registers under namespaced key", func(t *testing.T) {
		t.Parallel()
		r := schema.NewRegistry()
		require.NoError(t, r.Register("achievements", entriesCollection()))

		col, ok := r.Lookup("achievements__entries")
		require.True(t, ok)
		assert.Equal(t, "entries", col.Name)

		owner, ok := r.Owner("achievements__entries")
		require.True(t, ok)
		assert.Equal(t, "achievements", owner)
	})

	t.Run("rejects duplicate collection key", func(t *testing.T) {
		t.Parallel()
		r := schema.NewRegistry()
		require.NoError(t, r.Register("achievements", entriesCollection()))

		err := r.Register("achievements", entriesCollection())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "achievements__entries")
	})

	t.Run("same name under different modules does not collide", func(t *testing.T) {
		t.Parallel()
		r := schema.NewRegistry()
		require.NoError(t, r.Register("achievements", entriesCollection()))
		require.NoError(t, r.Register("journal", entriesCollection()))

		assert.Equal(t, []string{"achievements__entries", "journal__entries"}, r.Keys())
	})

	t.Run("resolves module-local names", func(t *testing.T) {
		t.Parallel()
		r := schema.NewRegistry()
		require.NoError(t, r.Register("acme--crm", schema.Collection{
			Name:   "clients",
			Fields: schema.Shape{"name": {Type: schema.FieldTypeText}},
		}))

		_, ok := r.Resolve("clients", "acme--crm")
		assert.True(t, ok)
		_, ok = r.Lookup("acme___crm__clients")
		assert.True(t, ok)
	})
}
