package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a collection definition from YAML bytes.
// The raw bytes are retained on the collection for relation resolution.
func Parse(data []byte) (Collection, error) {
	var col Collection
	if err := yaml.Unmarshal(data, &col); err != nil {
		return Collection{}, fmt.Errorf("parse yaml: %w", err)
	}
	col.Raw = data

	if err := validateDefinition(col); err != nil {
		return Collection{}, fmt.Errorf("validate collection %q: %w", col.Name, err)
	}
	return col, nil
}

// MustParse is like Parse but panics on error. Intended for embedded
// collection definitions that ship inside a module binary.
func MustParse(data []byte) Collection {
	col, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return col
}

// ParseFile parses a collection definition from a YAML file.
func ParseFile(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, fmt.Errorf("read file %s: %w", path, err)
	}
	return Parse(data)
}

// ParseDir parses every .yaml/.yml collection definition in a directory.
func ParseDir(dir string) ([]Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var cols []Collection
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		col, err := ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func validateDefinition(col Collection) error {
	if col.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(col.Fields) == 0 {
		return fmt.Errorf("collection has no fields")
	}
	for name, f := range col.Fields {
		switch f.Type {
		case FieldTypeText, FieldTypeNumber, FieldTypeBool, FieldTypeDateTime,
			FieldTypeEmail, FieldTypeURL, FieldTypeJSON, FieldTypeFile:
		case FieldTypeSelect:
			if len(f.Values) == 0 {
				return fmt.Errorf("field %q: select requires values", name)
			}
		case FieldTypeRelation:
			if f.To == "" {
				return fmt.Errorf("field %q: relation requires a target", name)
			}
		default:
			return fmt.Errorf("field %q: unknown type %q", name, f.Type)
		}
	}
	return nil
}
