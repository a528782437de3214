// Package media handles file uploads for API routes.
//
// Each request that declares upload fields gets its own scratch
// directory under the configured root. Files are streamed to disk
// there and the directory is removed when the request finishes,
// so concurrent requests never touch each other's files.
//
// Multipart transport stringifies every value field; Split coerces
// primitive-looking strings (numbers, booleans) back before the
// body reaches validation.
package media
