package media

import "errors"

var (
	// ErrMissingFile indicates a required upload field had no file attached.
	ErrMissingFile = errors.New("media: required file field missing")

	// ErrMultipleFiles indicates a single-file field received more than one file.
	ErrMultipleFiles = errors.New("media: field does not accept multiple files")

	// ErrNotMultipart indicates a route with required upload fields received
	// a non-multipart request.
	ErrNotMultipart = errors.New("media: multipart request required")

	// ErrBodyTooLarge indicates the request body exceeded the configured limit.
	ErrBodyTooLarge = errors.New("media: request body too large")
)
