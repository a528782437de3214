package schema

// Field defines a single field in a collection's schema.
type Field struct {
	// Type is the semantic field type. See FieldType constants.
	Type FieldType `yaml:"type"`

	// Required indicates this field must be present and non-empty.
	Required bool `yaml:"required,omitempty"`

	// Values lists the valid values for select type fields.
	Values []string `yaml:"values,omitempty"`

	// To names the target collection for relation type fields.
	// The name is module-local; namespacing happens at registration.
	To string `yaml:"to,omitempty"`

	// Multiple allows arrays of values (relations and files).
	Multiple bool `yaml:"multiple,omitempty"`

	// Min and Max constrain number fields.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	// MaxLength constrains text fields. Zero means unbounded.
	MaxLength int `yaml:"maxLength,omitempty"`
}

// FieldType is the semantic type of a schema field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeJSON     FieldType = "json"
	FieldTypeSelect   FieldType = "select" // requires Values
	FieldTypeRelation FieldType = "relation" // requires To
	FieldTypeFile     FieldType = "file"
)

// IsRelation reports whether the field references another collection.
func (f Field) IsRelation() bool {
	return f.Type == FieldTypeRelation
}

// Shape is a named set of field definitions. It describes either a
// collection's stored fields or a route's expected input.
type Shape map[string]Field
