package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lifeforge/forge/pkg/crypto"
)

// sessionKeyHeader carries the RSA-wrapped AES session key on
// encrypted requests. Must match the server's header.
const sessionKeyHeader = "x-lifeforge-key"

// encryptedQueryParam carries the encrypted query blob on encrypted
// GET requests.
const encryptedQueryParam = "payload"

const defaultTimeout = 30 * time.Second

// Client talks to one forge server. It is safe for concurrent use;
// the encryption handshake runs once and the wrapped session key is
// reused across requests.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu         sync.Mutex
	token      string
	sessionKey []byte
	wrapped    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after a login flow.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Untyped builds a request for a path without a generated binding.
// Body and query are plain maps, the result raw JSON.
func (c *Client) Untyped(method, path string, opts ...EndpointOption) *Endpoint[map[string]any, map[string]any, json.RawMessage] {
	return NewEndpoint[map[string]any, map[string]any, json.RawMessage](c, method, path, opts...)
}

// ensureSessionKey performs the one-time handshake: fetch the server's
// RSA public key, generate an AES session key, wrap it.
func (c *Client) ensureSessionKey(ctx context.Context) (key []byte, wrapped string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionKey != nil {
		return c.sessionKey, c.wrapped, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forge/key", nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeyExchange, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeyExchange, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: server returned status %d", ErrKeyExchange, resp.StatusCode)
	}
	pem, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeyExchange, err)
	}

	sessionKey, err := crypto.NewSessionKey()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeyExchange, err)
	}
	wrappedKey, err := crypto.WrapSessionKey(pem, sessionKey)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeyExchange, err)
	}

	c.sessionKey = sessionKey
	c.wrapped = wrappedKey
	return sessionKey, wrappedKey, nil
}

func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// envelope mirrors the server's response envelope on the wire.
type envelope struct {
	Data    json.RawMessage   `json:"data"`
	State   string            `json:"state"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// do executes one request and decodes the envelope's data into out.
// out may be nil for fire-and-forget calls.
func (c *Client) do(ctx context.Context, method, path string, encrypted bool, body any, query map[string]any, out any) error {
	var sessionKey []byte
	var wrapped string
	if encrypted {
		var err error
		sessionKey, wrapped, err = c.ensureSessionKey(ctx)
		if err != nil {
			return err
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		// Only GET queries travel as an encrypted payload blob; other
		// methods keep plain URL parameters (the body is what's
		// encrypted there).
		qs, err := encodeQuery(query, encrypted && method == http.MethodGet, sessionKey)
		if err != nil {
			return err
		}
		target += "?" + qs
	}

	var reqBody io.Reader
	contentType := ""
	if method != http.MethodGet && body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request body: %w", err)
		}
		if encrypted {
			blob, err := crypto.Encrypt(sessionKey, raw)
			if err != nil {
				return fmt.Errorf("client: encrypt request body: %w", err)
			}
			reqBody = strings.NewReader(blob)
		} else {
			reqBody = bytes.NewReader(raw)
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if encrypted {
		req.Header.Set(sessionKeyHeader, wrapped)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	env, err := decodeEnvelope(raw, encrypted, sessionKey)
	if err != nil {
		return err
	}
	if env.State == "error" {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode response data: %w", err)
	}
	return nil
}

// decodeEnvelope parses a response body. Encrypted routes normally
// reply with an encrypted blob, but failures before the key exchange
// completes arrive as plain JSON; both are handled.
func decodeEnvelope(raw []byte, encrypted bool, sessionKey []byte) (envelope, error) {
	var env envelope
	if encrypted {
		if plain, err := crypto.Decrypt(sessionKey, strings.TrimSpace(string(raw))); err == nil {
			raw = plain
		}
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%w: %w", ErrBadEnvelope, err)
	}
	if env.State == "" {
		return env, ErrBadEnvelope
	}
	return env, nil
}

// encodeQuery serializes query data: an encrypted payload blob on
// encrypted routes, plain URL parameters otherwise.
func encodeQuery(query map[string]any, encrypted bool, sessionKey []byte) (string, error) {
	if encrypted {
		raw, err := json.Marshal(query)
		if err != nil {
			return "", fmt.Errorf("client: encode query payload: %w", err)
		}
		blob, err := crypto.Encrypt(sessionKey, raw)
		if err != nil {
			return "", fmt.Errorf("client: encrypt query payload: %w", err)
		}
		return encryptedQueryParam + "=" + url.QueryEscape(blob), nil
	}

	values := make(url.Values, len(query))
	for name, v := range query {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				values.Add(name, fmt.Sprint(item))
			}
		case []string:
			for _, item := range t {
				values.Add(name, item)
			}
		default:
			values.Set(name, fmt.Sprint(v))
		}
	}
	return values.Encode(), nil
}
