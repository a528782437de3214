package storage

import (
	"context"
	"io"
)

// Storage is the file storage abstraction the rest of the app codes
// against; S3Storage is the production implementation.
type Storage interface {
	// Put streams data into storage. size feeds the content-length
	// header; options control key, prefix, tenant, ACL, and content
	// type.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get opens the stored object. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object.
	Delete(ctx context.Context, key string) error

	// URL yields an access URL for the object: signed for private
	// files, the public prefix for public ones. URLOptions adjust
	// expiry, download disposition, or force one form.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// Config holds settings for S3-compatible storage.
type Config struct {
	// Bucket is the bucket name (required).
	Bucket string

	// AccessKey is the access key ID (required).
	AccessKey string

	// SecretKey is the secret access key (required).
	SecretKey string

	// Endpoint overrides the AWS endpoint, for MinIO and other
	// S3-compatible services.
	Endpoint string

	// Region defaults to us-east-1.
	Region string

	// PublicURL, when set, prefixes public file URLs instead of the
	// raw S3 URL, typically pointing at a CDN.
	PublicURL string

	// DefaultACL applies to uploads that do not set one (default
	// private).
	DefaultACL ACL

	// PathStyle switches to path-style URLs, which MinIO requires.
	PathStyle bool

	// MaxDownloadSize caps URL downloads in bytes (default 50MB).
	MaxDownloadSize int64
}

// FileInfo describes an uploaded object.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL is the access level of a stored object.
type ACL string

const (
	// ACLPrivate restricts access to signed URLs.
	ACLPrivate ACL = "private"

	// ACLPublicRead allows unauthenticated reads.
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion          = "us-east-1"
	DefaultMaxDownloadSize = 50 << 20 // 50MB
	DefaultSignedURLExpiry = 15 * 60  // seconds
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
	if c.MaxDownloadSize == 0 {
		c.MaxDownloadSize = DefaultMaxDownloadSize
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
