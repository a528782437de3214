package storage

// Option configures a Put.
type Option func(*putOptions)

type putOptions struct {
	key             string
	prefix          string
	tenant          string
	contentType     string
	acl             ACL
	validationRules []ValidationRule
}

// WithKey pins the storage key instead of the generated ULID-based one,
// which also makes it possible to overwrite an existing object.
func WithKey(key string) Option {
	return func(o *putOptions) {
		o.key = key
	}
}

// WithPrefix inserts a path segment between the tenant (if any) and the
// filename: WithPrefix("avatars") yields "avatars/{ulid}.{ext}".
func WithPrefix(prefix string) Option {
	return func(o *putOptions) {
		o.prefix = prefix
	}
}

// WithTenant isolates the object under a tenant: the ID becomes the
// leading path segment, "tenant123/{prefix}/{ulid}.{ext}".
func WithTenant(id string) Option {
	return func(o *putOptions) {
		o.tenant = id
	}
}

// WithContentType overrides magic-byte detection. Prefer detection;
// this exists for content the sniffer cannot classify.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithACL overrides the configured default ACL for this upload.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		o.acl = acl
	}
}

// WithValidation runs the rules before uploading; any failure aborts
// the Put with a *FileValidationError.
func WithValidation(rules ...ValidationRule) Option {
	return func(o *putOptions) {
		o.validationRules = append(o.validationRules, rules...)
	}
}
