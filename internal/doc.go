// Package internal provides the core types and implementation for the Forge framework.
//
// This package is internal and should not be used directly. Import "github.com/lifeforge/forge"
// instead, which re-exports the public API.
//
// # Core Types
//
// The package defines the fundamental types that users interact with:
//
//   - App: Orchestrates schema registration, module mounting, HTTP routing, and graceful shutdown
//   - Context: Provides request/response access, identity, decrypted inputs, and helper methods
//   - Forge: Immutable builder that produces route controllers for a module
//   - Controller: A fully described endpoint (method, input shapes, checks, callback)
//   - Tree: Nested route tree mapping path segments to controllers, subtrees, or raw handlers
//   - Router: Interface plain handlers use to declare routes with HTTP methods and grouping
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for individual route handlers that return errors
//   - Middleware: Wraps handlers to add cross-cutting concerns like request IDs or CORS
//   - ErrorHandler: Custom error handling function for handler errors
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. The Deadline, Done, Err, and Value
// methods delegate to the underlying request context:
//
//	ctrl.Callback(func(c forge.Context) (any, error) {
//	    // Pass c directly to database calls, HTTP clients, etc.
//	    return c.Store().Collection("entries").GetFullList().Execute(c)
//	})
//
// # Application Structure
//
// Create an application with New() and configure it using options. New
// validates every mounted controller and aggregates module schemas, so
// misconfiguration fails at startup rather than at request time:
//
//	app, err := internal.New(
//	    internal.WithStore(pg),
//	    internal.WithKeyPair(keys),
//	    internal.WithJWT(tokens),
//	    internal.WithModules(achievements.New(), auth.New(sessions, tokens)),
//	)
//
// # Controllers
//
// Modules declare endpoints through the Forge builder. Each builder method
// returns a copy, so partially configured builders can be shared safely:
//
//	f := internal.NewForge("achievements")
//
//	list := f.Query().
//	    Input(internal.Input{Query: listShape}).
//	    Callback(handleList)
//
//	create := f.Mutation().
//	    Input(internal.Input{Body: entryShape}).
//	    StatusCode(http.StatusCreated).
//	    Callback(handleCreate)
//
// Controllers run an ordered request pipeline: authentication, session key
// exchange, input decryption, media extraction, shape validation, reference
// existence checks, and finally the callback. The callback's return value is
// wrapped in the response envelope unless the controller opts out.
//
// # Handler Pattern
//
// Plain (non-module) handlers implement the Handler interface and declare routes:
//
//	type WebhookHandler struct {
//	    enqueuer *internal.JobEnqueuer
//	}
//
//	func (h *WebhookHandler) Routes(r internal.Router) {
//	    r.POST("/webhooks/stripe", h.handleStripe)
//	}
//
// Handlers receive dependencies via constructor injection, not context helpers.
// This keeps handler logic explicit and testable.
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns:
//
//	func LoggingMiddleware(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) error {
//	        start := time.Now()
//	        err := next(c)
//	        c.LogInfo("request processed", "duration", time.Since(start))
//	        return err
//	    }
//	}
//
// Middleware can inspect/modify the request, short-circuit processing, or wrap
// the response. They have full access to the Context and can be route-specific
// or global.
//
// # Error Handling
//
// Errors returned from callbacks and handlers flow through the ErrorHandler,
// which renders the error envelope. HTTPError carries the status code, an
// optional application error code, and a field-keyed breakdown for validation
// failures. Store lookup failures map to 404 and malformed filters to 400;
// anything else is logged and rendered as a generic 500.
//
// # Server Runtime
//
// Start the server with app.Run() or use Run() for multi-domain deployments:
//
//	// Single app
//	err := app.Run(":8080", internal.Logger(log))
//
//	// Multi-domain
//	err := internal.Run(
//	    internal.Domain("api.example.com", apiApp),
//	    internal.Domain("*.example.com", tenantApp),
//	    internal.Address(":8080"),
//	)
//
// Module startup hooks and job workers run before the server accepts traffic
// and stop gracefully during shutdown.
//
// # Design Principles
//
//   - No magic: Explicit code, no reflection, no service containers
//   - Fail at startup: Schema collisions and malformed routes never reach request time
//   - Constructor injection: All dependencies visible in main.go
//   - Framework, not boilerplate: Provides utilities, not business logic
//
// See the forge package documentation for the public API and usage examples.
package internal
