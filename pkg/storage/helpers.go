package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const downloadTimeout = 30 * time.Second

// PutFile uploads a multipart file. The MIME type comes from magic
// bytes, never from the client-supplied filename. A nil or empty file
// yields ErrEmptyFile; failed WithValidation rules yield a
// *FileValidationError.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.validationRules) > 0 {
		mimeType := DetectMIME(fh)
		if err := ValidateFile(fh, mimeType, o.validationRules...); err != nil {
			return nil, err
		}
		// Reuse the detection result instead of sniffing twice.
		opts = append(opts, WithContentType(mimeType))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open file: %w", err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}

// PutBytes uploads an in-memory payload. The filename informs key
// generation only; content type is still detected from the bytes.
func PutBytes(ctx context.Context, s Storage, data []byte, filename string, opts ...Option) (*FileInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}

// PutFromURL fetches sourceURL and stores the body. maxSize bounds the
// download, with 0 meaning DefaultMaxDownloadSize. Malformed URLs yield
// ErrInvalidURL, oversized bodies ErrDownloadTooLarge, and network or
// HTTP failures ErrDownloadFailed.
func PutFromURL(ctx context.Context, s Storage, sourceURL string, maxSize int64, opts ...Option) (*FileInfo, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxDownloadSize
	}

	data, err := downloadCapped(ctx, sourceURL, maxSize)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}

// downloadCapped fetches a URL over plain HTTP(S) and returns at most
// maxSize bytes, erroring instead of truncating when the body is
// larger.
func downloadCapped(ctx context.Context, sourceURL string, maxSize int64) ([]byte, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if resp == nil || resp.Body == nil {
		return nil, fmt.Errorf("%w: empty response", ErrDownloadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}
	if resp.ContentLength > maxSize {
		return nil, ErrDownloadTooLarge
	}

	// Servers may omit or understate Content-Length, so enforce the cap
	// on the actual bytes too. The extra byte distinguishes "exactly at
	// the limit" from "over it".
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrDownloadTooLarge
	}

	return data, nil
}
