package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/job"
	"github.com/lifeforge/forge/pkg/media"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/query"
	"github.com/lifeforge/forge/pkg/storage"
)

// Context provides request/response access and helper methods to
// route callbacks. It also implements context.Context by delegating
// to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Param(name string) string

	// Body returns the validated (and, for encrypted routes,
	// decrypted) request body fields.
	Body() map[string]any

	// Query returns the validated query parameters, with values
	// coerced to their declared types.
	Query() map[string]any

	// BodyString returns a body field as a string, empty if absent.
	BodyString(field string) string

	// QueryString returns a query field as a string, empty if absent.
	QueryString(field string) string

	// Files returns the uploaded files saved to this request's
	// scratch directory. The directory is removed when the request
	// finishes; copy or upload files before returning.
	Files() []media.File

	// File returns the first uploaded file for the given field.
	File(field string) (media.File, bool)

	// UserID returns the authenticated user's ID, empty for
	// anonymous requests on public routes.
	UserID() string

	// IsAuthenticated reports whether a user is attached to the request.
	IsAuthenticated() bool

	// Store returns the record-store service scoped to the owning
	// module's collection namespace.
	Store() *query.Service

	// SessionKey returns the negotiated AES session key for
	// encrypted routes, nil otherwise.
	SessionKey() []byte

	// Decrypt decrypts a blob with the negotiated session key.
	Decrypt(blob string) ([]byte, error)

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Stream copies r to the response with the given status and
	// content type. Used by downloadable routes.
	Stream(code int, contentType string, r io.Reader) error

	// Success writes a success envelope, encrypted when the route is.
	Success(code int, data any) error

	// Accepted writes an accepted envelope with HTTP 202, signalling
	// queued background work.
	Accepted(data any) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the callback to trigger the
	// error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether a response has already been written.
	Written() bool

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	// LogDebug logs a debug message with optional attributes.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with optional attributes.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with optional attributes.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with optional attributes.
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// Enqueue adds a job to the queue for background processing.
	// Returns job.ErrNotConfigured if the app has no job queue.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	// EnqueueTx adds a job to the queue within a transaction.
	EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error

	// Storage returns the configured storage client.
	// Returns storage.ErrNotConfigured if the app has no storage.
	Storage() (storage.Storage, error)

	// Upload stores data and returns file info.
	Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error)

	// Download retrieves a file from storage.
	Download(key string) (io.ReadCloser, error)

	// DeleteFile removes a file from storage.
	DeleteFile(key string) error

	// FileURL generates a URL for accessing a stored file.
	FileURL(key string, opts ...storage.URLOption) (string, error)

	// OTP returns the one-time-code service.
	// Returns otp.ErrNotConfigured if the app has no OTP service.
	OTP() (*otp.Service, error)

	// ResponseWriter returns the wrapped response writer for
	// advanced usage, nil when not wrapped.
	ResponseWriter() *ResponseWriter
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger

	body       map[string]any
	queryData  map[string]any
	files      []media.File
	store      *query.Service
	sessionKey []byte
	userID     string

	jobEnqueuer *JobEnqueuer
	storage     storage.Storage
	otpService  *otp.Service
}

// newContext creates a context for middleware and plain handlers.
// Pipeline-specific fields (body, store, session key) stay zero.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw := NewResponseWriter(w)

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		jobEnqueuer:    app.jobEnqueuer,
		storage:        app.storage,
		otpService:     app.otpService,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Body() map[string]any {
	return c.body
}

func (c *requestContext) Query() map[string]any {
	return c.queryData
}

func (c *requestContext) BodyString(field string) string {
	if v, ok := c.body[field]; ok {
		return stringifyField(v)
	}
	return ""
}

func (c *requestContext) QueryString(field string) string {
	if v, ok := c.queryData[field]; ok {
		return stringifyField(v)
	}
	// Outside the pipeline the query is never coerced; read it raw.
	return c.request.URL.Query().Get(field)
}

// stringifyField renders a coerced query or body value back to its
// transport string form.
func stringifyField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func (c *requestContext) Files() []media.File {
	return c.files
}

func (c *requestContext) File(field string) (media.File, bool) {
	for _, f := range c.files {
		if f.Field == field {
			return f, true
		}
	}
	return media.File{}, false
}

func (c *requestContext) UserID() string {
	return c.userID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.userID != ""
}

func (c *requestContext) Store() *query.Service {
	return c.store
}

func (c *requestContext) SessionKey() []byte {
	return c.sessionKey
}

func (c *requestContext) Decrypt(blob string) ([]byte, error) {
	if len(c.sessionKey) == 0 {
		return nil, crypto.ErrInvalidKey
	}
	return crypto.Decrypt(c.sessionKey, blob)
}

// context.Context delegation.

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Stream(code int, contentType string, r io.Reader) error {
	if contentType != "" {
		c.response.Header().Set("Content-Type", contentType)
	}
	c.response.WriteHeader(code)
	_, err := io.Copy(c.response, r)
	return err
}

func (c *requestContext) Success(code int, data any) error {
	return c.writeEnvelope(code, SuccessEnvelope(data))
}

func (c *requestContext) Accepted(data any) error {
	return c.writeEnvelope(http.StatusAccepted, AcceptedEnvelope(data))
}

// writeEnvelope serializes an envelope, encrypting it with the
// negotiated session key when one was exchanged.
func (c *requestContext) writeEnvelope(code int, env Envelope) error {
	if len(c.sessionKey) == 0 {
		return c.JSON(code, env)
	}
	plain, err := json.Marshal(env)
	if err != nil {
		return err
	}
	blob, err := crypto.Encrypt(c.sessionKey, plain)
	if err != nil {
		return err
	}
	return c.String(code, blob)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (c *requestContext) Written() bool {
	return c.responseWriter != nil && c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) Set(key any, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.jobEnqueuer == nil {
		return job.ErrNotConfigured
	}
	return c.jobEnqueuer.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	if c.jobEnqueuer == nil {
		return job.ErrNotConfigured
	}
	return c.jobEnqueuer.EnqueueTx(c.Context(), tx, name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage, nil
}

func (c *requestContext) Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage.Put(c.Context(), r, size, opts...)
}

func (c *requestContext) Download(key string) (io.ReadCloser, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage.Get(c.Context(), key)
}

func (c *requestContext) DeleteFile(key string) error {
	if c.storage == nil {
		return storage.ErrNotConfigured
	}
	return c.storage.Delete(c.Context(), key)
}

func (c *requestContext) FileURL(key string, opts ...storage.URLOption) (string, error) {
	if c.storage == nil {
		return "", storage.ErrNotConfigured
	}
	return c.storage.URL(c.Context(), key, opts...)
}

func (c *requestContext) OTP() (*otp.Service, error) {
	if c.otpService == nil {
		return nil, otp.ErrNotConfigured
	}
	return c.otpService, nil
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}
