package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		store, err := New(Config{
			Bucket:    "media",
			AccessKey: "access",
			SecretKey: "secret",
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		require.NotNil(t, store.client)
		require.NotNil(t, store.presigner)
		require.Equal(t, DefaultRegion, store.cfg.Region)
		require.Equal(t, ACLPrivate, store.cfg.DefaultACL)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()

		store, err := New(Config{
			Bucket:    "media",
			AccessKey: "access",
			SecretKey: "secret",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		store, err := New(Config{})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})
}

func TestSanitizePathSegment(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"avatars":            "avatars",
		"my folder":          "my_folder",
		"/path/to/":          "path_to",
		"../../../etc/passwd": "___etc_passwd",
		"file@#$%name":       "file____name",
		"..hidden":           "hidden",
		"файл":               "____",
		"":                   "",
		"my-file_name":       "my-file_name",
		"file.name":          "file.name",
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, want, sanitizePathSegment(input))
		})
	}
}

func TestBuildKey(t *testing.T) {
	t.Parallel()

	store := &S3Storage{
		cfg: Config{
			Bucket:     "media",
			DefaultACL: ACLPrivate,
		},
	}

	tests := []struct {
		name        string
		tenant      string
		prefix      string
		contentType string
		pattern     string
	}{
		{"bare key", "", "", "image/jpeg", `^[0-9A-Z]{26}\.jpg$`},
		{"prefix only", "", "avatars", "image/png", `^avatars/[0-9A-Z]{26}\.png$`},
		{"tenant only", "tenant123", "", "application/pdf", `^tenant123/[0-9A-Z]{26}\.pdf$`},
		{"tenant and prefix", "tenant123", "documents", "application/pdf", `^tenant123/documents/[0-9A-Z]{26}\.pdf$`},
		{"unmapped type", "", "", "application/unknown", `^[0-9A-Z]{26}\.bin$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Regexp(t, tt.pattern, store.buildKey(tt.tenant, tt.prefix, tt.contentType))
		})
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			"amazon endpoint",
			Config{Bucket: "media", Region: "us-east-1"},
			"https://media.s3.us-east-1.amazonaws.com/path/to/file.jpg",
		},
		{
			"cdn base",
			Config{Bucket: "media", PublicURL: "https://cdn.example.com"},
			"https://cdn.example.com/path/to/file.jpg",
		},
		{
			"cdn base trailing slash",
			Config{Bucket: "media", PublicURL: "https://cdn.example.com/"},
			"https://cdn.example.com/path/to/file.jpg",
		},
		{
			"custom endpoint path style",
			Config{Bucket: "media", Endpoint: "http://localhost:9000", PathStyle: true},
			"http://localhost:9000/media/path/to/file.jpg",
		},
		{
			"custom endpoint virtual host",
			Config{Bucket: "media", Endpoint: "http://localhost:9000"},
			"http://localhost:9000/path/to/file.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &S3Storage{cfg: tt.cfg}
			require.Equal(t, tt.want, store.publicURL("path/to/file.jpg"))
		})
	}
}
