package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore satisfies Storage with overridable behavior per method.
type fakeStore struct {
	put    func(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)
	get    func(ctx context.Context, key string) (io.ReadCloser, error)
	remove func(ctx context.Context, key string) error
	url    func(ctx context.Context, key string, opts ...URLOption) (string, error)
}

func (f *fakeStore) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	if f.put != nil {
		return f.put(ctx, r, size, opts...)
	}
	return &FileInfo{Key: "stored", Size: size}, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.get != nil {
		return f.get(ctx, key)
	}
	return io.NopCloser(strings.NewReader("payload")), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.remove != nil {
		return f.remove(ctx, key)
	}
	return nil
}

func (f *fakeStore) URL(ctx context.Context, key string, opts ...URLOption) (string, error) {
	if f.url != nil {
		return f.url(ctx, key, opts...)
	}
	return "https://example.com/" + key, nil
}

// formFile builds a multipart.FileHeader backed by real bytes, so
// fh.Open works like it would for an actual request upload.
func formFile(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(body, mw.Boundary()).ReadForm(int64(len(data)) + 1024)
	require.NoError(t, err)

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func serveBytes(t *testing.T, status int, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		if len(data) > 0 {
			_, _ = w.Write(data)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPutFile(t *testing.T) {
	t.Parallel()

	t.Run("nil header", func(t *testing.T) {
		t.Parallel()

		_, err := PutFile(context.Background(), &fakeStore{}, nil)
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("zero size", func(t *testing.T) {
		t.Parallel()

		fh := &multipart.FileHeader{Filename: "a.txt", Header: textproto.MIMEHeader{}}
		_, err := PutFile(context.Background(), &fakeStore{}, fh)
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("upload without validation", func(t *testing.T) {
		t.Parallel()

		data := []byte("hello world")
		var gotSize int64
		store := &fakeStore{
			put: func(_ context.Context, r io.Reader, size int64, _ ...Option) (*FileInfo, error) {
				gotSize = size
				content, err := io.ReadAll(r)
				require.NoError(t, err)
				require.Equal(t, data, content)
				return &FileInfo{Key: "stored", Size: size, ContentType: "text/plain"}, nil
			},
		}

		info, err := PutFile(context.Background(), store, formFile(t, "a.txt", data))
		require.NoError(t, err)
		require.Equal(t, "stored", info.Key)
		require.Equal(t, int64(len(data)), gotSize)
	})

	t.Run("size rule rejects", func(t *testing.T) {
		t.Parallel()

		fh := formFile(t, "a.txt", []byte("hello world"))
		_, err := PutFile(context.Background(), &fakeStore{}, fh,
			WithValidation(MaxSize(5)),
		)
		requireCode(t, err, ErrCodeFileTooLarge)
	})

	t.Run("detected type forwarded to Put", func(t *testing.T) {
		t.Parallel()

		png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 100)...)

		var gotContentType string
		store := &fakeStore{
			put: func(_ context.Context, _ io.Reader, size int64, opts ...Option) (*FileInfo, error) {
				o := &putOptions{}
				for _, opt := range opts {
					opt(o)
				}
				gotContentType = o.contentType
				return &FileInfo{Key: "stored", Size: size, ContentType: o.contentType}, nil
			},
		}

		_, err := PutFile(context.Background(), store, formFile(t, "a.png", png),
			WithValidation(MaxSize(1<<20), ImageOnly()),
		)
		require.NoError(t, err)
		require.Equal(t, "image/png", gotContentType)
	})

	t.Run("type rule rejects", func(t *testing.T) {
		t.Parallel()

		fh := formFile(t, "a.txt", []byte("plain text content"))
		_, err := PutFile(context.Background(), &fakeStore{}, fh,
			WithValidation(ImageOnly()),
		)
		requireCode(t, err, ErrCodeInvalidMIME)
	})

	t.Run("store error propagates", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("storage unavailable")
		store := &fakeStore{
			put: func(_ context.Context, _ io.Reader, _ int64, _ ...Option) (*FileInfo, error) {
				return nil, storeErr
			},
		}

		_, err := PutFile(context.Background(), store, formFile(t, "a.txt", []byte("hello")))
		require.ErrorIs(t, err, storeErr)
	})

	t.Run("unopenable header", func(t *testing.T) {
		t.Parallel()

		// A header with no multipart form behind it cannot be opened.
		fh := &multipart.FileHeader{
			Filename: "a.txt",
			Size:     100,
			Header:   textproto.MIMEHeader{},
		}

		_, err := PutFile(context.Background(), &fakeStore{}, fh)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open file")
	})
}

func TestPutBytes(t *testing.T) {
	t.Parallel()

	t.Run("empty and nil data", func(t *testing.T) {
		t.Parallel()

		_, err := PutBytes(context.Background(), &fakeStore{}, []byte{}, "a.txt")
		require.ErrorIs(t, err, ErrEmptyFile)

		_, err = PutBytes(context.Background(), &fakeStore{}, nil, "a.txt")
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("upload", func(t *testing.T) {
		t.Parallel()

		data := []byte("hello world")
		var gotSize int64
		var gotData []byte
		store := &fakeStore{
			put: func(_ context.Context, r io.Reader, size int64, _ ...Option) (*FileInfo, error) {
				gotSize = size
				var err error
				gotData, err = io.ReadAll(r)
				require.NoError(t, err)
				return &FileInfo{Key: "stored", Size: size}, nil
			},
		}

		info, err := PutBytes(context.Background(), store, data, "a.txt")
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, int64(len(data)), gotSize)
		require.Equal(t, data, gotData)
	})

	t.Run("megabyte payload", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 1<<20)
		for i := range data {
			data[i] = byte(i % 256)
		}

		store := &fakeStore{
			put: func(_ context.Context, r io.Reader, size int64, _ ...Option) (*FileInfo, error) {
				content, err := io.ReadAll(r)
				require.NoError(t, err)
				require.Len(t, content, len(data))
				return &FileInfo{Key: "stored", Size: size}, nil
			},
		}

		info, err := PutBytes(context.Background(), store, data, "large.bin")
		require.NoError(t, err)
		require.Equal(t, int64(len(data)), info.Size)
	})

	t.Run("store error propagates", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("storage unavailable")
		store := &fakeStore{
			put: func(_ context.Context, _ io.Reader, _ int64, _ ...Option) (*FileInfo, error) {
				return nil, storeErr
			},
		}

		_, err := PutBytes(context.Background(), store, []byte("data"), "a.txt")
		require.ErrorIs(t, err, storeErr)
	})
}

func TestPutFromURL(t *testing.T) {
	t.Parallel()

	t.Run("rejected URLs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"not-a-valid-url",
			"ftp://example.com/file.txt",
			"file:///etc/passwd",
		} {
			_, err := PutFromURL(context.Background(), &fakeStore{}, raw, 0)
			require.ErrorIs(t, err, ErrInvalidURL, raw)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		t.Parallel()

		srv := serveBytes(t, http.StatusNotFound, nil)
		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 0)
		require.ErrorIs(t, err, ErrDownloadFailed)
		require.Contains(t, err.Error(), "404")
	})

	t.Run("server error status", func(t *testing.T) {
		t.Parallel()

		srv := serveBytes(t, http.StatusInternalServerError, nil)
		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 0)
		require.ErrorIs(t, err, ErrDownloadFailed)
		require.Contains(t, err.Error(), "500")
	})

	t.Run("declared length over limit", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Length", "1000000")
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 1024)
		require.ErrorIs(t, err, ErrDownloadTooLarge)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		t.Parallel()

		// No Content-Length header; the limit is enforced while reading.
		srv := serveBytes(t, http.StatusOK, make([]byte, 2048))
		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 1024)
		require.ErrorIs(t, err, ErrDownloadTooLarge)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		srv := serveBytes(t, http.StatusOK, nil)
		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 0)
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("download and upload", func(t *testing.T) {
		t.Parallel()

		payload := []byte("hello from server")
		srv := serveBytes(t, http.StatusOK, payload)

		var gotData []byte
		var gotSize int64
		store := &fakeStore{
			put: func(_ context.Context, r io.Reader, size int64, _ ...Option) (*FileInfo, error) {
				gotSize = size
				var err error
				gotData, err = io.ReadAll(r)
				require.NoError(t, err)
				return &FileInfo{Key: "stored", Size: size}, nil
			},
		}

		info, err := PutFromURL(context.Background(), store, srv.URL+"/file.txt", 0)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, payload, gotData)
		require.Equal(t, int64(len(payload)), gotSize)
	})

	t.Run("zero maxSize falls back to default", func(t *testing.T) {
		t.Parallel()

		dataSize := int64(DefaultMaxDownloadSize - 1024)
		srv := serveBytes(t, http.StatusOK, make([]byte, dataSize))

		info, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 0)
		require.NoError(t, err)
		require.Equal(t, dataSize, info.Size)
	})

	t.Run("context deadline", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("data"))
			}
		}))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := PutFromURL(ctx, &fakeStore{}, srv.URL+"/file.txt", 0)
		require.ErrorIs(t, err, ErrDownloadFailed)
	})

	t.Run("plain http accepted", func(t *testing.T) {
		t.Parallel()

		srv := serveBytes(t, http.StatusOK, []byte("data"))
		info, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", 0)
		require.NoError(t, err)
		require.NotNil(t, info)
	})

	t.Run("store error propagates", func(t *testing.T) {
		t.Parallel()

		srv := serveBytes(t, http.StatusOK, []byte("data"))
		storeErr := errors.New("storage unavailable")
		store := &fakeStore{
			put: func(_ context.Context, _ io.Reader, _ int64, _ ...Option) (*FileInfo, error) {
				return nil, storeErr
			},
		}

		_, err := PutFromURL(context.Background(), store, srv.URL+"/file.txt", 0)
		require.ErrorIs(t, err, storeErr)
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()

		_, err := PutFromURL(context.Background(), &fakeStore{}, "http://127.0.0.1:59999/file.txt", 0)
		require.ErrorIs(t, err, ErrDownloadFailed)
	})

	t.Run("body exactly at limit", func(t *testing.T) {
		t.Parallel()

		limit := int64(100)
		srv := serveBytes(t, http.StatusOK, make([]byte, limit))

		info, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", limit)
		require.NoError(t, err)
		require.Equal(t, limit, info.Size)
	})

	t.Run("one byte past limit", func(t *testing.T) {
		t.Parallel()

		limit := int64(100)
		srv := serveBytes(t, http.StatusOK, make([]byte, limit+1))

		_, err := PutFromURL(context.Background(), &fakeStore{}, srv.URL+"/file.txt", limit)
		require.ErrorIs(t, err, ErrDownloadTooLarge)
	})
}
