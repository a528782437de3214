package forge

import (
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/health"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/storage"
	"github.com/lifeforge/forge/pkg/store"
)

// WithStore sets the record store backing every module's collections.
//
// Example:
//
//	pg := store.NewPostgres(pool, nil)
//	forge.New(forge.WithStore(pg))
func WithStore(s store.Store) Option {
	return internal.WithStore(s)
}

// WithKeyPair sets the RSA key pair used for session-key exchange on
// encrypted routes. Without a key pair, encrypted routes reject requests.
func WithKeyPair(kp *crypto.KeyPair) Option {
	return internal.WithKeyPair(kp)
}

// WithJWT sets the token service used for bearer authentication.
func WithJWT(svc *jwt.Service) Option {
	return internal.WithJWT(svc)
}

// WithOTP sets the one-time-code service exposed to callbacks via c.OTP().
func WithOTP(svc *otp.Service) Option {
	return internal.WithOTP(svc)
}

// WithScratchDir sets the root under which per-request upload
// directories are created. Defaults to the system temp directory.
func WithScratchDir(dir string) Option {
	return internal.WithScratchDir(dir)
}

// WithModules mounts feature modules: their collections are
// registered in the schema registry and their route trees mounted
// under their manifest names.
//
// Example:
//
//	forge.New(
//	    forge.WithModules(
//	        achievements.New(),
//	        auth.New(sessions, tokens),
//	    ),
//	)
func WithModules(mods ...federation.Module) Option {
	return internal.WithModules(mods...)
}

// WithFederation mounts a loader result: its modules, providers, and
// ordered categories. Use this when modules come from a plugin
// registry rather than direct construction.
func WithFederation(result *federation.Result) Option {
	return internal.WithFederation(result)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers plain handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	forge.New(
//	    forge.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	forge.WithHealthChecks(
//	    forge.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLivenessPath overrides the liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides the readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	forge.New(
//	    forge.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithStorage configures file storage for the application.
// A storage.Storage implementation must be provided (e.g., S3Client).
// Enables c.Upload(), c.Download(), c.DeleteFile(), and c.FileURL().
func WithStorage(s storage.Storage) Option {
	return internal.WithStorage(s)
}

// WithJobs enables both job enqueueing and worker processing using River.
// A pgxpool.Pool is required for the job queue. Workers are started
// automatically when the app runs and stopped gracefully during shutdown.
func WithJobs(pool *pgxpool.Pool, opts ...JobOption) Option {
	return internal.WithJobs(pool, opts...)
}

// WithJobEnqueuer enables job enqueueing without worker processing.
// Use this for web servers that dispatch work to separate worker processes.
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) Option {
	return internal.WithJobEnqueuer(pool, opts...)
}

// WithJobWorker enables job processing without enqueueing capability.
// Use this for dedicated background worker processes.
func WithJobWorker(pool *pgxpool.Pool, opts ...JobOption) Option {
	return internal.WithJobWorker(pool, opts...)
}
