//go:build integration

package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/pkg/storage"
)

// Targets the local S3-compatible service from docker-compose up -d.
const (
	testEndpoint  = "http://localhost:9000"
	testAccessKey = "admin"
	testSecretKey = "admin123"
	testBucket    = "uploads"
	testRegion    = "us-east-1"
)

func newTestStorage(t *testing.T) *storage.S3Storage {
	t.Helper()

	s, err := storage.New(storage.Config{
		Endpoint:  testEndpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
		Bucket:    testBucket,
		Region:    testRegion,
		PathStyle: true,
	})
	require.NoError(t, err, "failed to create storage client")
	return s
}

// mustPut uploads data and schedules its removal when the test ends.
func mustPut(t *testing.T, s *storage.S3Storage, data []byte, opts ...storage.Option) *storage.FileInfo {
	t.Helper()

	ctx := context.Background()
	info, err := s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Delete(ctx, info.Key)
	})
	return info
}

func TestS3IntegrationPut(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)

	t.Run("private upload", func(t *testing.T) {
		t.Parallel()

		data := []byte("test content for private file")
		info := mustPut(t, s, data,
			storage.WithPrefix("test-private"),
			storage.WithACL(storage.ACLPrivate),
		)
		require.NotEmpty(t, info.Key)
		require.Equal(t, int64(len(data)), info.Size)
		require.Equal(t, storage.ACLPrivate, info.ACL)
	})

	t.Run("public upload", func(t *testing.T) {
		t.Parallel()

		data := []byte("test content for public file")
		info := mustPut(t, s, data,
			storage.WithPrefix("test-public"),
			storage.WithACL(storage.ACLPublicRead),
		)
		require.NotEmpty(t, info.Key)
		require.Equal(t, int64(len(data)), info.Size)
		require.Equal(t, storage.ACLPublicRead, info.ACL)
	})

	t.Run("tenant prefix leads the key", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("test content with tenant"),
			storage.WithTenant("tenant123"),
			storage.WithPrefix("uploads"),
		)
		require.True(t, strings.HasPrefix(info.Key, "tenant123/"))
	})

	t.Run("MIME detection from content", func(t *testing.T) {
		t.Parallel()

		pngData := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 100)...)

		info := mustPut(t, s, pngData)
		require.Equal(t, "image/png", info.ContentType)
		require.True(t, strings.HasSuffix(info.Key, ".png"))
	})

	t.Run("explicit content type wins", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("some binary data"),
			storage.WithContentType("application/octet-stream"),
		)
		require.Equal(t, "application/octet-stream", info.ContentType)
	})
}

func TestS3IntegrationGet(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		want := []byte("content to retrieve")
		info := mustPut(t, s, want)

		reader, err := s.Get(ctx, info.Key)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		require.Equal(t, want, data)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		_, err := s.Get(ctx, "non-existent-key-12345")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestS3IntegrationDelete(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("deleted file is gone", func(t *testing.T) {
		t.Parallel()

		data := []byte("content to delete")
		info, err := s.Put(ctx, bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, info.Key))

		_, err = s.Get(ctx, info.Key)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, s.Delete(ctx, "non-existent-key-67890"))
	})
}

func TestS3IntegrationURL(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("private files get signed URLs", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("private content"), storage.WithACL(storage.ACLPrivate))

		url, err := s.URL(ctx, info.Key)
		require.NoError(t, err)
		require.Contains(t, url, info.Key)
		require.Contains(t, url, "X-Amz-Signature")
	})

	t.Run("public files get plain URLs", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("public content"), storage.WithACL(storage.ACLPublicRead))

		url, err := s.URL(ctx, info.Key)
		require.NoError(t, err)
		require.Contains(t, url, info.Key)
		require.NotContains(t, url, "X-Amz-Signature")
	})

	t.Run("WithSigned forces signing for public files", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("public content with signed url"), storage.WithACL(storage.ACLPublicRead))

		url, err := s.URL(ctx, info.Key, storage.WithSigned(0))
		require.NoError(t, err)
		require.Contains(t, url, "X-Amz-Signature")
	})

	t.Run("custom expiry", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("content with custom expiry"))

		url, err := s.URL(ctx, info.Key, storage.WithExpiry(time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, url)
	})

	t.Run("download disposition", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("downloadable content"))

		url, err := s.URL(ctx, info.Key, storage.WithDownload("myfile.txt"))
		require.NoError(t, err)
		require.Contains(t, url, "response-content-disposition")
	})
}

func TestS3IntegrationHeadObject(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("metadata matches the upload", func(t *testing.T) {
		t.Parallel()

		info := mustPut(t, s, []byte("content for head request"), storage.WithACL(storage.ACLPublicRead))

		head, err := s.HeadObject(ctx, info.Key)
		require.NoError(t, err)
		require.Equal(t, info.Key, head.Key)
		require.Equal(t, info.Size, head.Size)
		require.Equal(t, info.ContentType, head.ContentType)
		require.Equal(t, storage.ACLPublicRead, head.ACL)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		_, err := s.HeadObject(ctx, "non-existent-key-head")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestS3IntegrationCopy(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("copy duplicates the content", func(t *testing.T) {
		t.Parallel()

		data := []byte("content to copy")
		src := mustPut(t, s, data, storage.WithPrefix("source"))

		dstKey := "copied/" + src.Key
		require.NoError(t, s.Copy(ctx, src.Key, dstKey))
		t.Cleanup(func() {
			_ = s.Delete(ctx, dstKey)
		})

		reader, err := s.Get(ctx, dstKey)
		require.NoError(t, err)
		defer reader.Close()

		copied, err := io.ReadAll(reader)
		require.NoError(t, err)
		require.Equal(t, data, copied)
	})

	t.Run("copy keeps the source ACL", func(t *testing.T) {
		t.Parallel()

		src := mustPut(t, s, []byte("public content to copy"),
			storage.WithPrefix("source-public"),
			storage.WithACL(storage.ACLPublicRead),
		)

		dstKey := "copied-public/" + src.Key
		require.NoError(t, s.Copy(ctx, src.Key, dstKey))
		t.Cleanup(func() {
			_ = s.Delete(ctx, dstKey)
		})

		url, err := s.URL(ctx, dstKey)
		require.NoError(t, err)
		require.NotContains(t, url, "X-Amz-Signature")
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		require.Error(t, s.Copy(ctx, "non-existent-source", "destination-key"))
	})
}
