package forge

import (
	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/job"
	"github.com/lifeforge/forge/pkg/logger"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle: schema registration,
	// module mounting, HTTP routing, and graceful shutdown.
	App = internal.App

	// Router is the interface plain handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Forge produces route controllers for a module.
	Forge = internal.Forge

	// Builder accumulates controller configuration. Every method
	// returns a copy, so builders can be shared safely.
	Builder = internal.Builder

	// Controller is a fully described module endpoint.
	Controller = internal.Controller

	// CallbackFunc is the business logic of a controller.
	CallbackFunc = internal.CallbackFunc

	// Input declares the body and query shapes of a controller.
	Input = internal.Input

	// ExistenceCheck verifies that a referenced record exists before
	// the callback runs.
	ExistenceCheck = internal.ExistenceCheck

	// ExistenceIn selects which input carries the checked field.
	ExistenceIn = internal.ExistenceIn

	// Tree is a nested route tree mapping path segments to
	// controllers, subtrees, or raw http.Handlers.
	Tree = internal.Tree

	// Node is a route tree node.
	Node = internal.Node

	// Envelope is the uniform response wrapper.
	Envelope = internal.Envelope

	// State is the envelope state discriminator.
	State = internal.State

	// HTTPError represents an HTTP error with envelope data.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// RouteInfo describes a mounted module route.
	RouteInfo = internal.RouteInfo

	// ResponseWriter wraps http.ResponseWriter with write tracking and hooks.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries multiple request sources in order.
	Extractor = internal.Extractor

	// ExtractorSource extracts a value from the request context.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Module is a mountable feature module.
	Module = federation.Module

	// Provider is a module with a startup hook.
	Provider = federation.Provider

	// Manifest describes a module for discovery and mounting.
	Manifest = federation.Manifest

	// JobOption configures the job manager.
	JobOption = job.Option

	// EnqueueOption configures job enqueueing.
	EnqueueOption = job.EnqueueOption

	// EnqueuerOption configures the job enqueuer.
	EnqueuerOption = job.EnqueuerOption

	// JobManager handles background job processing.
	JobManager = internal.JobManager

	// JobEnqueuer provides job enqueueing without worker processing.
	JobEnqueuer = internal.JobEnqueuer
)

// Envelope states.
const (
	StateSuccess  = internal.StateSuccess
	StateError    = internal.StateError
	StateAccepted = internal.StateAccepted
)

// Existence check sources.
const (
	ExistenceInBody  = internal.ExistenceInBody
	ExistenceInQuery = internal.ExistenceInQuery
)

// SessionKeyHeader carries the wrapped AES session key on encrypted routes.
const SessionKeyHeader = internal.SessionKeyHeader

// New creates a new application with the given options. Mount
// failures (schema collisions, malformed route trees, misconfigured
// controllers) are returned here, never deferred to request time.
//
// Example:
//
//	app, err := forge.New(
//	    forge.WithStore(pg),
//	    forge.WithKeyPair(keys),
//	    forge.WithJWT(tokens),
//	    forge.WithModules(achievements.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = app.Run(":8080", forge.Logger(slog))
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// NewForge creates a controller factory bound to a module ID. The
// module ID prefixes collection references so controllers of one
// module can name another module's collections explicitly.
func NewForge(moduleID string) Forge {
	return internal.NewForge(moduleID)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// Envelope constructors.

// SuccessEnvelope wraps data in a success envelope.
func SuccessEnvelope(data any) Envelope {
	return internal.SuccessEnvelope(data)
}

// AcceptedEnvelope signals that work was queued rather than completed.
func AcceptedEnvelope(data any) Envelope {
	return internal.AcceptedEnvelope(data)
}

// ErrorEnvelope wraps an error message and optional field breakdown.
func ErrorEnvelope(message string, fields map[string]string) Envelope {
	return internal.ErrorEnvelope(message, fields)
}

// Error helpers.

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// IsHTTPError reports whether err is or wraps an *HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the *HTTPError in err's chain, or nil if there is none.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Error option and constructor re-exports.
var (
	WithErrorCode = internal.WithErrorCode
	WithRequestID = internal.WithRequestID
	WithError     = internal.WithError
	WithFields    = internal.WithFields

	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrInternalServer     = internal.ErrInternalServer
	ErrServiceUnavailable = internal.ErrServiceUnavailable
)

// Extractor constructors.
var (
	NewExtractor    = internal.NewExtractor
	FromHeader      = internal.FromHeader
	FromQuery       = internal.FromQuery
	FromCookie      = internal.FromCookie
	FromParam       = internal.FromParam
	FromBearerToken = internal.FromBearerToken
)

// ContextValue retrieves a typed value from the request context.
// Returns the zero value if the key is missing or the type doesn't match.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param retrieves a typed URL parameter.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query retrieves a typed query parameter.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault retrieves a typed query parameter with a default value.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}
