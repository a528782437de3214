package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/pkg/crypto"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	key, err := crypto.NewSessionKey()
	require.NoError(t, err)
	require.Len(t, key, crypto.SessionKeySize)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		blob, err := crypto.Encrypt(key, []byte(`{"title":"Run 5k"}`))
		require.NoError(t, err)

		plain, err := crypto.Decrypt(key, blob)
		require.NoError(t, err)
		assert.Equal(t, `{"title":"Run 5k"}`, string(plain))
	})

	t.Run("nonces differ between encryptions", func(t *testing.T) {
		t.Parallel()
		a, err := crypto.Encrypt(key, []byte("same"))
		require.NoError(t, err)
		b, err := crypto.Encrypt(key, []byte("same"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		t.Parallel()
		blob, err := crypto.Encrypt(key, []byte("secret"))
		require.NoError(t, err)

		other, err := crypto.NewSessionKey()
		require.NoError(t, err)
		_, err = crypto.Decrypt(other, blob)
		assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
	})

	t.Run("tampered blob fails", func(t *testing.T) {
		t.Parallel()
		_, err := crypto.Decrypt(key, "not-base64!!!")
		assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
	})

	t.Run("short key rejected", func(t *testing.T) {
		t.Parallel()
		_, err := crypto.Encrypt([]byte("short"), []byte("x"))
		assert.ErrorIs(t, err, crypto.ErrInvalidKey)
	})
}

func TestKeyExchange(t *testing.T) {
	t.Parallel()

	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	t.Run("wrap and unwrap session key", func(t *testing.T) {
		t.Parallel()
		publicPEM, err := kp.PublicPEM()
		require.NoError(t, err)

		sessionKey, err := crypto.NewSessionKey()
		require.NoError(t, err)

		wrapped, err := crypto.WrapSessionKey(publicPEM, sessionKey)
		require.NoError(t, err)

		unwrapped, err := kp.UnwrapSessionKey(wrapped)
		require.NoError(t, err)
		assert.Equal(t, sessionKey, unwrapped)
	})

	t.Run("garbage wrapped key fails", func(t *testing.T) {
		t.Parallel()
		_, err := kp.UnwrapSessionKey("garbage")
		assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
	})

	t.Run("pem round trip", func(t *testing.T) {
		t.Parallel()
		pemData, err := kp.EncodePEM()
		require.NoError(t, err)

		restored, err := crypto.ParseKeyPair(pemData)
		require.NoError(t, err)

		sessionKey, err := crypto.NewSessionKey()
		require.NoError(t, err)
		publicPEM, err := kp.PublicPEM()
		require.NoError(t, err)
		wrapped, err := crypto.WrapSessionKey(publicPEM, sessionKey)
		require.NoError(t, err)

		unwrapped, err := restored.UnwrapSessionKey(wrapped)
		require.NoError(t, err)
		assert.Equal(t, sessionKey, unwrapped)
	})

	t.Run("bad pem rejected", func(t *testing.T) {
		t.Parallel()
		_, err := crypto.ParseKeyPair([]byte("nope"))
		assert.ErrorIs(t, err, crypto.ErrBadKeyPEM)
	})
}
