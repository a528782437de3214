// Package achievements is a first-party feature module: a journal of
// personal achievements with a difficulty rating. It demonstrates the
// full controller stack end to end and doubles as the reference for
// writing new modules.
package achievements

import (
	_ "embed"
	"net/http"

	"github.com/lifeforge/forge"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/query"
	"github.com/lifeforge/forge/pkg/schema"
)

const moduleID = "achievements"

//go:embed schema/entries.yaml
var entriesDefinition []byte

// entries is the module's collection definition. Controller inputs are
// derived from it so the stored schema and the validated input never
// drift apart.
var entries = schema.MustParse(entriesDefinition)

// entriesPatchShape relaxes Required for partial updates.
var entriesPatchShape = optionalShape(entries.Fields)

func optionalShape(s schema.Shape) schema.Shape {
	out := make(schema.Shape, len(s))
	for name, f := range s {
		f.Required = false
		out[name] = f
	}
	return out
}

// Module is the achievements feature module.
type Module struct{}

// New creates the module.
func New() *Module {
	return &Module{}
}

// Manifest describes the module to the federation layer.
func (m *Module) Manifest() federation.Manifest {
	return federation.Manifest{
		Name:        moduleID,
		DisplayName: "Achievements",
		Version:     "1.0.0",
		Description: "Track personal achievements and their difficulty.",
		Icon:        "tabler:award",
		Category:    "lifestyle",
		IsInternal:  true,
	}
}

// Collections returns the module's schema definitions.
func (m *Module) Collections() []schema.Collection {
	return []schema.Collection{entries}
}

// Routes returns the module's controller tree.
func (m *Module) Routes() map[string]any {
	return map[string]any{
		"entries": forge.Tree{
			"list": forge.NewForge(moduleID).Query().
				Description("List achievement entries, optionally filtered by difficulty.").
				Input(forge.Input{Query: schema.Shape{
					"difficulty": entriesPatchShape["difficulty"],
					"page":       {Type: schema.FieldTypeNumber},
					"perPage":    {Type: schema.FieldTypeNumber},
				}}).
				Callback(m.list),
			"create": forge.NewForge(moduleID).Mutation().
				Description("Create an achievement entry.").
				Input(forge.Input{Body: entries.Fields}).
				StatusCode(http.StatusCreated).
				Callback(m.create),
			"update": forge.NewForge(moduleID).Mutation().
				Method(http.MethodPatch).
				Description("Update an achievement entry.").
				Input(forge.Input{
					Body: entriesPatchShape,
					Query: schema.Shape{
						"id": {Type: schema.FieldTypeText, Required: true},
					},
				}).
				ExistenceCheck(forge.ExistenceInQuery, map[string]string{"id": "entries"}).
				Callback(m.update),
			"delete": forge.NewForge(moduleID).Mutation().
				Method(http.MethodDelete).
				Description("Delete an achievement entry.").
				Input(forge.Input{Query: schema.Shape{
					"id": {Type: schema.FieldTypeText, Required: true},
				}}).
				ExistenceCheck(forge.ExistenceInQuery, map[string]string{"id": "entries"}).
				StatusCode(http.StatusNoContent).
				Callback(m.delete),
		},
	}
}

func (m *Module) list(c forge.Context) (any, error) {
	var difficulty query.Condition
	if v := c.QueryString("difficulty"); v != "" {
		difficulty = query.Where{Field: "difficulty", Op: "=", Value: v}
	}

	page := forge.QueryDefault(c, "page", 1)
	perPage := forge.QueryDefault(c, "perPage", 25)

	return c.Store().Collection("entries").
		GetList().
		Filter(difficulty).
		Sort("-created").
		Page(page).
		PerPage(perPage).
		Execute(c)
}

func (m *Module) create(c forge.Context) (any, error) {
	return c.Store().Collection("entries").
		Create().
		Data(c.Body()).
		Execute(c)
}

func (m *Module) update(c forge.Context) (any, error) {
	return c.Store().Collection("entries").
		Update().
		ID(c.QueryString("id")).
		Data(c.Body()).
		Execute(c)
}

func (m *Module) delete(c forge.Context) (any, error) {
	return nil, c.Store().Collection("entries").
		Delete().
		ID(c.QueryString("id")).
		Execute(c)
}
