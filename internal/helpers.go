package internal

import "strconv"

// ContextValue reads a typed value set on the context, returning the
// zero value when the key is absent or holds a different type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns a typed path parameter, zero-valued on parse failure.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := parseValue[T](c.Param(name))
	return v
}

// Query returns a typed query parameter, zero-valued on parse failure.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := parseValue[T](c.QueryString(name))
	return v
}

// QueryDefault returns a typed query parameter, falling back to def
// when the parameter is missing or unparseable.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, def T) T {
	raw := c.QueryString(name)
	if raw == "" {
		return def
	}
	if v, ok := parseValue[T](raw); ok {
		return v
	}
	return def
}

func parseValue[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		if v, err := strconv.Atoi(raw); err == nil {
			return any(v).(T), true
		}
	case int64:
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return any(v).(T), true
		}
	case float64:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return any(v).(T), true
		}
	case bool:
		if v, err := strconv.ParseBool(raw); err == nil {
			return any(v).(T), true
		}
	}
	return zero, false
}
