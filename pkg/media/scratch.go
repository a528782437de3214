package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Scratch is a per-request temporary directory for uploaded files.
// Cleanup removes only this request's directory, never the shared root.
type Scratch struct {
	dir string
}

// NewScratch creates a fresh scratch directory under root.
// An empty root falls back to the system temp directory.
func NewScratch(root string) (*Scratch, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("media: create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, "upload-")
	if err != nil {
		return nil, fmt.Errorf("media: create scratch dir: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the absolute path of the scratch directory.
func (s *Scratch) Dir() string {
	return s.dir
}

// Save streams an uploaded part to disk and returns its descriptor.
func (s *Scratch) Save(field string, fh *multipart.FileHeader) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("media: open upload %q: %w", field, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, "file-*")
	if err != nil {
		return File{}, fmt.Errorf("media: create file for %q: %w", field, err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return File{}, fmt.Errorf("media: save upload %q: %w", field, err)
	}

	return File{
		Field:       field,
		Name:        filepath.Base(fh.Filename),
		Path:        dst.Name(),
		Size:        size,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// Cleanup removes the scratch directory and everything in it.
// Safe to call on a nil receiver or more than once.
func (s *Scratch) Cleanup() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	return err
}
