package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifeforge/forge/pkg/schema"
)

func TestResolveCollection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		collection string
		moduleID   string
		want       string
	}{
		{
			name:       "first-party module",
			collection: "entries",
			moduleID:   "achievements",
			want:       "achievements__entries",
		},
		{
			name:       "third-party module",
			collection: "clients",
			moduleID:   "acme--crm",
			want:       "acme___crm__clients",
		},
		{
			name:       "users collection bypasses namespacing",
			collection: "users",
			moduleID:   "lifeforge--user",
			want:       "users",
		},
		{
			name:       "users collection from first-party module",
			collection: "users",
			moduleID:   "wallet",
			want:       "users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, schema.ResolveCollection(tt.collection, tt.moduleID))
		})
	}
}

func TestResolveCollection_Deterministic(t *testing.T) {
	t.Parallel()

	// Resolution must be a pure function of its inputs.
	first := schema.ResolveCollection("clients", "acme--crm")
	for range 10 {
		assert.Equal(t, first, schema.ResolveCollection("clients", "acme--crm"))
	}
}
