package storage

import "time"

// URLOption configures URL generation.
type URLOption func(*urlOptions)

type urlOptions struct {
	downloadName string
	expiry       time.Duration
	forceSigned  bool
	forcePublic  bool
}

// DefaultURLExpiry applies to signed URLs without an explicit expiry.
const DefaultURLExpiry = 15 * time.Minute

// WithExpiry sets how long a signed URL stays valid (default 15m).
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		o.expiry = d
	}
}

// WithDownload sets the filename in a Content-Disposition attachment
// header, making browsers save rather than render the file. Disposition
// requires signing, so this implies a signed URL.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
		o.forceSigned = true
	}
}

// WithSigned forces a signed URL regardless of the object's ACL. A zero
// expiry falls back to the default.
func WithSigned(expiry time.Duration) URLOption {
	return func(o *urlOptions) {
		o.forceSigned = true
		if expiry > 0 {
			o.expiry = expiry
		}
	}
}

// WithPublic forces a public URL regardless of ACL. The link only works
// when the object or bucket actually allows public reads.
func WithPublic() URLOption {
	return func(o *urlOptions) {
		o.forcePublic = true
	}
}
