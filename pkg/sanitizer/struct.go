package sanitizer

import (
	"errors"
	"reflect"
)

// ErrNotStructPointer is returned when SanitizeStruct receives anything
// other than a non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("sanitizer: expected a non-nil struct pointer")

// SanitizeStruct sanitizes string fields in place according to their
// `sanitize` struct tag. Supported tag values:
//
//   - "html": SanitizeHTML, basic formatting survives
//   - "strip": StripHTML, plain text only
//
// Untagged fields and non-string fields are left untouched. Nested
// structs are walked recursively.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotStructPointer
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	sanitizeStructValue(rv)
	return nil
}

func sanitizeStructValue(rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			sanitizeStructValue(field)
			continue
		case reflect.Pointer:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				sanitizeStructValue(field.Elem())
			}
			continue
		case reflect.String:
		default:
			continue
		}

		switch rt.Field(i).Tag.Get("sanitize") {
		case "html":
			field.SetString(SanitizeHTML(field.String()))
		case "strip":
			field.SetString(StripHTML(field.String()))
		}
	}
}
