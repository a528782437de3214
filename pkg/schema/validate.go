package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"time"
)

// FieldErrors maps field names to validation messages.
// It implements error so it can flow through handler error paths.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + e[f])
	}
	return b.String()
}

// Validate checks a decoded payload against the shape and returns
// field-keyed errors. A nil return means the payload is valid. Fields not
// declared in the shape are rejected.
func (s Shape) Validate(data map[string]any) FieldErrors {
	errs := make(FieldErrors)

	for name, f := range s {
		val, present := data[name]
		if !present || isEmpty(val) {
			if f.Required {
				errs[name] = "is required"
			}
			continue
		}
		if msg := validateValue(f, val); msg != "" {
			errs[name] = msg
		}
	}

	for name := range data {
		if _, known := s[name]; !known {
			errs[name] = "is not a known field"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func validateValue(f Field, val any) string {
	if f.Multiple {
		items, ok := val.([]any)
		if !ok {
			return "must be an array"
		}
		for _, item := range items {
			if msg := validateScalar(f, item); msg != "" {
				return msg
			}
		}
		return ""
	}
	return validateScalar(f, val)
}

func validateScalar(f Field, val any) string {
	switch f.Type {
	case FieldTypeText:
		s, ok := val.(string)
		if !ok {
			return "must be a string"
		}
		if f.MaxLength > 0 && len(s) > f.MaxLength {
			return fmt.Sprintf("must be at most %d characters", f.MaxLength)
		}

	case FieldTypeNumber:
		n, ok := toFloat(val)
		if !ok {
			return "must be a number"
		}
		if f.Min != nil && n < *f.Min {
			return fmt.Sprintf("must be at least %g", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Sprintf("must be at most %g", *f.Max)
		}

	case FieldTypeBool:
		if _, ok := val.(bool); !ok {
			return "must be a boolean"
		}

	case FieldTypeDateTime:
		s, ok := val.(string)
		if !ok {
			return "must be an RFC 3339 timestamp"
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return "must be an RFC 3339 timestamp"
		}

	case FieldTypeEmail:
		s, ok := val.(string)
		if !ok {
			return "must be an email address"
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return "must be an email address"
		}

	case FieldTypeURL:
		s, ok := val.(string)
		if !ok {
			return "must be a URL"
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "must be an absolute URL"
		}

	case FieldTypeSelect:
		s, ok := val.(string)
		if !ok {
			return "must be a string"
		}
		for _, allowed := range f.Values {
			if s == allowed {
				return ""
			}
		}
		return "must be one of: " + strings.Join(f.Values, ", ")

	case FieldTypeRelation:
		if _, ok := val.(string); !ok {
			return "must be a record id"
		}

	case FieldTypeJSON, FieldTypeFile:
		// Any decoded value is acceptable; files are validated by the
		// media stage, not here.
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
