package storage

import (
	"fmt"
	"mime/multipart"
)

// FileValidationError carries enough structure for handlers to turn an
// upload rejection into a field-level validation response.
type FileValidationError struct {
	Details map[string]any
	Field   string
	Code    string
	Message string
}

func (e *FileValidationError) Error() string {
	return e.Message
}

// FileValidationError codes.
const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeFileTooSmall = "file_too_small"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// ValidationRule is one check applied to an upload before it is stored.
// Validate covers multipart uploads; ValidateReader covers streamed
// uploads where only the byte count is known.
type ValidationRule interface {
	Validate(fh *multipart.FileHeader, mimeType string) error
	ValidateReader(size int64, mimeType string) error
}

// ValidateFile runs the rules in order and returns the first failure.
// mimeType should come from magic-byte detection, not the filename.
func ValidateFile(fh *multipart.FileHeader, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.Validate(fh, mimeType); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReader runs the rules against a streamed upload of the given
// size. It returns the first failure.
func ValidateReader(size int64, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.ValidateReader(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

type maxSizeRule struct {
	maxBytes int64
}

// MaxSize rejects files larger than the given byte count.
func MaxSize(bytes int64) ValidationRule {
	return &maxSizeRule{maxBytes: bytes}
}

func (r *maxSizeRule) Validate(fh *multipart.FileHeader, mimeType string) error {
	return r.ValidateReader(fh.Size, mimeType)
}

func (r *maxSizeRule) ValidateReader(size int64, _ string) error {
	if size > r.maxBytes {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, r.maxBytes),
			Details: map[string]any{
				"limit": r.maxBytes,
				"got":   size,
			},
		}
	}
	return nil
}

type minSizeRule struct {
	minBytes int64
}

// MinSize rejects files smaller than the given byte count.
func MinSize(bytes int64) ValidationRule {
	return &minSizeRule{minBytes: bytes}
}

func (r *minSizeRule) Validate(fh *multipart.FileHeader, mimeType string) error {
	return r.ValidateReader(fh.Size, mimeType)
}

func (r *minSizeRule) ValidateReader(size int64, _ string) error {
	if size < r.minBytes {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeFileTooSmall,
			Message: fmt.Sprintf("file size %d is below minimum of %d bytes", size, r.minBytes),
			Details: map[string]any{
				"minimum": r.minBytes,
				"got":     size,
			},
		}
	}
	return nil
}

type notEmptyRule struct{}

// NotEmpty rejects nil and zero-byte files.
func NotEmpty() ValidationRule {
	return &notEmptyRule{}
}

func (r *notEmptyRule) Validate(fh *multipart.FileHeader, mimeType string) error {
	if fh == nil {
		return r.ValidateReader(0, mimeType)
	}
	return r.ValidateReader(fh.Size, mimeType)
}

func (r *notEmptyRule) ValidateReader(size int64, _ string) error {
	if size == 0 {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeEmptyFile,
			Message: "file is empty",
			Details: map[string]any{},
		}
	}
	return nil
}

type allowedTypesRule struct {
	patterns []string
}

// AllowedTypes accepts only files whose detected MIME type matches one
// of the patterns; "image/*" style wildcards cover a whole major type.
func AllowedTypes(patterns ...string) ValidationRule {
	return &allowedTypesRule{patterns: patterns}
}

func (r *allowedTypesRule) Validate(_ *multipart.FileHeader, mimeType string) error {
	return r.ValidateReader(0, mimeType)
}

func (r *allowedTypesRule) ValidateReader(_ int64, mimeType string) error {
	if !matchesMIME(mimeType, r.patterns) {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeInvalidMIME,
			Message: fmt.Sprintf("file type %q is not allowed", mimeType),
			Details: map[string]any{
				"type":    mimeType,
				"allowed": r.patterns,
			},
		}
	}
	return nil
}

// ImageOnly is shorthand for AllowedTypes("image/*").
func ImageOnly() ValidationRule {
	return AllowedTypes("image/*")
}

// DocumentsOnly accepts PDF, Office, text, CSV, and RTF files.
func DocumentsOnly() ValidationRule {
	return AllowedTypes(
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"text/csv",
		"application/rtf",
	)
}
