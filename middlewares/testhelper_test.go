package middlewares_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/job"
	"github.com/lifeforge/forge/pkg/media"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/query"
	"github.com/lifeforge/forge/pkg/storage"
)

// testContext is a minimal Context implementation for exercising
// middleware in isolation.
type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	values   map[any]any
	userID   string
	written  bool
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: w,
		request:  r,
		values:   make(map[any]any),
	}
}

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }
func (c *testContext) Context() context.Context      { return c.request.Context() }
func (c *testContext) Param(name string) string      { return "" }
func (c *testContext) Body() map[string]any          { return nil }
func (c *testContext) Query() map[string]any         { return nil }
func (c *testContext) BodyString(field string) string {
	return ""
}
func (c *testContext) QueryString(field string) string {
	return c.request.URL.Query().Get(field)
}
func (c *testContext) Files() []media.File { return nil }
func (c *testContext) File(field string) (media.File, bool) {
	return media.File{}, false
}
func (c *testContext) UserID() string             { return c.userID }
func (c *testContext) IsAuthenticated() bool      { return c.userID != "" }
func (c *testContext) Store() *query.Service      { return nil }
func (c *testContext) SessionKey() []byte         { return nil }
func (c *testContext) Decrypt(blob string) ([]byte, error) {
	return nil, crypto.ErrInvalidKey
}
func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *testContext) JSON(code int, v any) error {
	c.written = true
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.written = true
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) NoContent(code int) error {
	c.written = true
	c.response.WriteHeader(code)
	return nil
}

func (c *testContext) Stream(code int, contentType string, r io.Reader) error {
	c.written = true
	c.response.WriteHeader(code)
	_, err := io.Copy(c.response, r)
	return err
}

func (c *testContext) Success(code int, data any) error {
	return c.JSON(code, internal.SuccessEnvelope(data))
}

func (c *testContext) Accepted(data any) error {
	return c.JSON(http.StatusAccepted, internal.AcceptedEnvelope(data))
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	err := internal.NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *testContext) Written() bool                     { return c.written }
func (c *testContext) Logger() *slog.Logger              { return slog.Default() }
func (c *testContext) LogDebug(msg string, attrs ...any) {}
func (c *testContext) LogInfo(msg string, attrs ...any)  {}
func (c *testContext) LogWarn(msg string, attrs ...any)  {}
func (c *testContext) LogError(msg string, attrs ...any) {}

func (c *testContext) Set(key, value any) {
	c.values[key] = value
	// Also store in request context for context extractors
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *testContext) Get(key any) any {
	return c.values[key]
}

func (c *testContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error { return nil }
func (c *testContext) EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	return nil
}
func (c *testContext) Storage() (storage.Storage, error) { return nil, storage.ErrNotConfigured }
func (c *testContext) Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	return nil, storage.ErrNotConfigured
}
func (c *testContext) Download(key string) (io.ReadCloser, error) {
	return nil, storage.ErrNotConfigured
}
func (c *testContext) DeleteFile(key string) error { return storage.ErrNotConfigured }
func (c *testContext) FileURL(key string, opts ...storage.URLOption) (string, error) {
	return "", storage.ErrNotConfigured
}
func (c *testContext) OTP() (*otp.Service, error)           { return nil, otp.ErrNotConfigured }
func (c *testContext) ResponseWriter() *internal.ResponseWriter { return nil }

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }
