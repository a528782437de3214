package media

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// DefaultMaxMemory is passed to ParseMultipartForm; parts above it
// spill to the Go runtime's own temp files before being moved into
// the scratch directory.
const DefaultMaxMemory = 32 << 20 // 32MB

// File describes one uploaded file persisted to a scratch directory.
type File struct {
	Field       string // form field the file arrived under
	Name        string // original client filename
	Path        string // absolute path on disk
	ContentType string
	Size        int64
}

// Config declares one upload field of a route.
type Config struct {
	Optional bool
	Multiple bool
}

// Split separates a request into body fields and uploaded files.
//
// Multipart requests have their files streamed into scratch and their
// value fields primitive-coerced. Non-multipart requests are decoded
// as JSON; required upload fields then fail with ErrNotMultipart.
func Split(r *http.Request, cfg map[string]Config, scratch *Scratch) (map[string]any, []File, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		for field, fc := range cfg {
			if !fc.Optional {
				return nil, nil, errors.Join(ErrNotMultipart, errors.New("field "+field))
			}
		}
		body, err := decodeJSONBody(r.Body)
		return body, nil, err
	}

	if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, ErrNotMultipart
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, ErrBodyTooLarge
		}
		return nil, nil, err
	}

	var files []File
	for field, fc := range cfg {
		headers := r.MultipartForm.File[field]
		switch {
		case len(headers) == 0:
			if !fc.Optional {
				return nil, nil, errors.Join(ErrMissingFile, errors.New("field "+field))
			}
		case len(headers) > 1 && !fc.Multiple:
			return nil, nil, errors.Join(ErrMultipleFiles, errors.New("field "+field))
		default:
			for _, fh := range headers {
				f, err := scratch.Save(field, fh)
				if err != nil {
					return nil, nil, err
				}
				files = append(files, f)
			}
		}
	}

	body := make(map[string]any, len(r.MultipartForm.Value))
	for field, values := range r.MultipartForm.Value {
		if len(values) == 1 {
			body[field] = Coerce(values[0])
			continue
		}
		coerced := make([]any, len(values))
		for i, v := range values {
			coerced[i] = Coerce(v)
		}
		body[field] = coerced
	}

	return body, files, nil
}

// Coerce turns a stringified multipart value back into its primitive
// form: booleans and numbers come back typed, everything else stays a
// string. JSON arrays and objects are decoded so structured fields
// survive the multipart round trip.
func Coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

func decodeJSONBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.New("media: request body is not a JSON object")
	}
	return body, nil
}
