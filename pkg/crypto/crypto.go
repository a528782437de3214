// Package crypto implements the payload-encryption scheme used by
// encrypted routes: clients encrypt request bodies with an AES-256-GCM
// session key, and hand that key to the server wrapped with the server's
// RSA public key. Authenticated encryption covers both confidentiality
// and integrity.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when an AES session key has the wrong size.
	ErrInvalidKey = errors.New("crypto: session key must be 32 bytes")

	// ErrDecryptFailed is returned when a ciphertext cannot be opened.
	// The cause (tampering vs wrong key) is deliberately not exposed.
	ErrDecryptFailed = errors.New("crypto: decryption failed")

	// ErrBadKeyPEM is returned when a PEM-encoded RSA key cannot be parsed.
	ErrBadKeyPEM = errors.New("crypto: malformed PEM key")
)

// SessionKeySize is the AES-256 key length.
const SessionKeySize = 32

// NewSessionKey generates a random AES-256 session key.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM under the session key and
// returns base64(nonce || ciphertext || tag).
func Encrypt(key, plaintext []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a base64(nonce || ciphertext || tag) blob.
func Decrypt(key []byte, blob string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	if len(raw) < gcm.NonceSize() {
		return nil, ErrDecryptFailed
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != SessionKeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// KeyPair is the server's asymmetric key used for session-key exchange.
type KeyPair struct {
	private *rsa.PrivateKey
}

// GenerateKeyPair creates a 2048-bit RSA key pair.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{private: key}, nil
}

// ParseKeyPair loads a key pair from a PEM-encoded PKCS#8 private key.
func ParseKeyPair(pemData []byte) (*KeyPair, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrBadKeyPEM
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Join(ErrBadKeyPEM, err)
	}
	private, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrBadKeyPEM
	}
	return &KeyPair{private: private}, nil
}

// EncodePEM serializes the private key as PEM-encoded PKCS#8.
func (kp *KeyPair) EncodePEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(kp.private)
	if err != nil {
		return nil, fmt.Errorf("encode key pair: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// PublicPEM returns the PEM-encoded public key handed out to clients.
func (kp *KeyPair) PublicPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&kp.private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// WrapSessionKey encrypts an AES session key with an RSA public key.
// This is the client side of the key exchange.
func WrapSessionKey(publicPEM []byte, sessionKey []byte) (string, error) {
	block, _ := pem.Decode(publicPEM)
	if block == nil {
		return "", ErrBadKeyPEM
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", errors.Join(ErrBadKeyPEM, err)
	}
	public, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", ErrBadKeyPEM
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, public, sessionKey, nil)
	if err != nil {
		return "", fmt.Errorf("wrap session key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// UnwrapSessionKey decrypts a client-supplied wrapped session key.
// This is the server side of the key exchange.
func (kp *KeyPair) UnwrapSessionKey(wrapped string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, kp.private, raw, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	if len(key) != SessionKeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
