package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// Configuration.
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrNotConfigured = errors.New("storage: not configured")

	// Files.
	ErrEmptyFile = errors.New("storage: file is empty")

	// Validation.
	ErrFileTooLarge = errors.New("storage: file exceeds size limit")
	ErrFileTooSmall = errors.New("storage: file below minimum size")
	ErrInvalidMIME  = errors.New("storage: file type not allowed")

	// S3 operations.
	ErrNotFound      = errors.New("storage: file not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")

	// Remote downloads.
	ErrInvalidURL       = errors.New("storage: invalid URL")
	ErrDownloadFailed   = errors.New("storage: failed to download from URL")
	ErrDownloadTooLarge = errors.New("storage: download exceeds size limit")
)

// wrapS3Error translates AWS errors into the package sentinels, looking
// at both API error codes and the SDK's typed errors. The original
// error is flattened with %v so callers branch with errors.Is on the
// sentinels rather than errors.As on AWS types.
func wrapS3Error(err error, fallback error) error {
	return fmt.Errorf("%w: %v", s3Sentinel(err, fallback), err)
}

func s3Sentinel(err error, fallback error) error {
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}
	}

	return fallback
}
