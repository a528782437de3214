// Package middlewares holds the cross-cutting middleware shipped with Forge:
// request IDs, panic recovery, per-request timeouts, and CORS.
//
// # Request ID
//
// RequestID tags every request with an identifier for correlation. Incoming
// headers are honored when present; otherwise a ULID is generated.
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// Pair it with RequestIDExtractor() so the logger stamps request_id onto
// every log line automatically:
//
//	app, _ := forge.New(
//	    forge.WithLogger("api", middlewares.RequestIDExtractor()),
//	    forge.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover turns panics into a typed PanicError carrying the panic value and
// a stack trace, which the global ErrorHandler can inspect:
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.Recover(),
//	    ),
//	    forge.WithErrorHandler(func(c forge.Context, err error) error {
//	        if middlewares.IsPanicError(err) {
//	            pe, _ := middlewares.AsPanicError(err)
//	            c.LogError("panic", "value", pe.Value, "stack", string(pe.Stack))
//	            return c.Error(500, "Internal Server Error")
//	        }
//	        return c.Error(500, err.Error())
//	    }),
//	)
//
// # Timeout
//
// Timeout bounds handler execution and reports overruns as a typed
// TimeoutError. The handler goroutine is not killed on timeout; handlers
// that want early termination should watch context.Done().
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	    forge.WithErrorHandler(func(c forge.Context, err error) error {
//	        if middlewares.IsTimeoutError(err) {
//	            return c.Error(504, "Gateway Timeout")
//	        }
//	        return c.Error(500, err.Error())
//	    }),
//	)
//
// # CORS
//
// CORS answers preflight OPTIONS requests and stamps Cross-Origin Resource
// Sharing headers on every response. The zero-option form allows all origins:
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.CORS(),
//	    ),
//	)
//
// Restrict origins and allow cookies:
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.CORS(
//	            middlewares.WithAllowOrigins("https://app.example.com"),
//	            middlewares.WithAllowCredentials(),
//	        ),
//	    ),
//	)
//
// Or decide per origin at request time:
//
//	app, _ := forge.New(
//	    forge.WithMiddleware(
//	        middlewares.CORS(
//	            middlewares.WithAllowOriginFunc(func(origin string) bool {
//	                return strings.HasSuffix(origin, ".example.com")
//	            }),
//	        ),
//	    ),
//	)
//
// # Ordering
//
// The middlewares compose best in this order:
//
//	forge.WithMiddleware(
//	    middlewares.CORS(),       // answer preflight before anything else runs
//	    middlewares.RequestID(),  // assign the ID so later logging carries it
//	    middlewares.Recover(),    // catch panics from timeout and handlers
//	    middlewares.Timeout(5*time.Second),
//	)
//
// # Putting It Together
//
//	import (
//	    "github.com/lifeforge/forge"
//	    "github.com/lifeforge/forge/middlewares"
//	)
//
//	app, _ := forge.New(
//	    forge.WithLogger("api", middlewares.RequestIDExtractor()),
//	    forge.WithMiddleware(
//	        middlewares.CORS(),
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	    forge.WithErrorHandler(func(c forge.Context, err error) error {
//	        switch {
//	        case middlewares.IsPanicError(err):
//	            return c.Error(500, "Internal Server Error")
//	        case middlewares.IsTimeoutError(err):
//	            return c.Error(504, "Gateway Timeout")
//	        default:
//	            return c.Error(500, err.Error())
//	        }
//	    }),
//	)
package middlewares
