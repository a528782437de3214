package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty fields are filled", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{}
		cfg.applyDefaults()

		require.Equal(t, DefaultRegion, cfg.Region)
		require.Equal(t, ACLPrivate, cfg.DefaultACL)
		require.Equal(t, int64(DefaultMaxDownloadSize), cfg.MaxDownloadSize)
	})

	t.Run("set fields are kept", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{
			Region:          "eu-west-1",
			DefaultACL:      ACLPublicRead,
			MaxDownloadSize: 100 << 20,
		}
		cfg.applyDefaults()

		require.Equal(t, "eu-west-1", cfg.Region)
		require.Equal(t, ACLPublicRead, cfg.DefaultACL)
		require.Equal(t, int64(100<<20), cfg.MaxDownloadSize)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Bucket:    "my-bucket",
		AccessKey: "access-key",
		SecretKey: "secret-key",
	}
	require.NoError(t, valid.validate())

	broken := map[string]Config{
		"missing bucket":     {AccessKey: "access-key", SecretKey: "secret-key"},
		"missing access key": {Bucket: "my-bucket", SecretKey: "secret-key"},
		"missing secret key": {Bucket: "my-bucket", AccessKey: "access-key"},
		"empty":              {},
	}

	for name, cfg := range broken {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
		})
	}
}
