package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/health"
	"github.com/lifeforge/forge/pkg/job"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/logger"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/storage"
	"github.com/lifeforge/forge/pkg/store"
)

// Option configures the application. Options returning an error abort
// New; configuration problems never reach request time.
type Option func(*App) error

// WithStore sets the record store backing every module's collections.
//
// Example:
//
//	pg := store.NewPostgres(pool, nil)
//	forge.New(forge.WithStore(pg))
func WithStore(s store.Store) Option {
	return func(a *App) error {
		if s == nil {
			return fmt.Errorf("forge: nil store")
		}
		a.store = s
		return nil
	}
}

// WithKeyPair sets the RSA key pair used for session-key exchange on
// encrypted routes.
func WithKeyPair(kp *crypto.KeyPair) Option {
	return func(a *App) error {
		if kp == nil {
			return fmt.Errorf("forge: nil key pair")
		}
		a.keyPair = kp
		return nil
	}
}

// WithJWT sets the token service used for bearer authentication.
func WithJWT(svc *jwt.Service) Option {
	return func(a *App) error {
		if svc == nil {
			return fmt.Errorf("forge: nil jwt service")
		}
		a.jwtService = svc
		return nil
	}
}

// WithOTP sets the one-time-code service exposed to callbacks.
func WithOTP(svc *otp.Service) Option {
	return func(a *App) error {
		a.otpService = svc
		return nil
	}
}

// WithScratchDir sets the root under which per-request upload
// directories are created. Defaults to the system temp directory.
func WithScratchDir(dir string) Option {
	return func(a *App) error {
		a.scratchDir = dir
		return nil
	}
}

// WithModules mounts feature modules: their collections are
// registered in the schema registry and their route trees mounted
// under their manifest names.
func WithModules(mods ...federation.Module) Option {
	return func(a *App) error {
		a.modules = append(a.modules, mods...)
		for _, m := range mods {
			if p, ok := m.(federation.Provider); ok {
				a.providers = append(a.providers, p)
			}
		}
		return nil
	}
}

// WithFederation mounts a loader result: its modules, providers, and
// ordered categories.
func WithFederation(result *federation.Result) Option {
	return func(a *App) error {
		if result == nil {
			return fmt.Errorf("forge: nil federation result")
		}
		a.modules = append(a.modules, result.Modules...)
		a.providers = append(a.providers, result.Providers...)
		a.categories = result.Categories
		return nil
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) error {
		a.middlewares = append(a.middlewares, mw...)
		return nil
	}
}

// WithHandlers registers handlers that declare plain routes outside
// the controller tree. Each handler's Routes method is called during
// setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) error {
		a.handlers = append(a.handlers, h...)
		return nil
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
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
	return func(a *App) error {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			return fmt.Errorf("forge: static files: %w", err)
		}

		fileServer := http.FileServerFS(subFS)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
		return nil
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) error {
		a.errorHandler = h
		return nil
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) error {
		a.notFoundHandler = h
		return nil
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) error {
		a.methodNotAllowedHandler = h
		return nil
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	forge.WithHealthChecks(
//	    forge.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    forge.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) error {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
		return nil
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	forge.New(
//	    forge.WithLogger("api", requestIDExtractor, userIDExtractor),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) error {
		a.logger = logger.New(extractors...).With("component", component)
		return nil
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l != nil {
			a.logger = l
		}
		return nil
	}
}

// WithStorage configures file storage for the application.
// A storage.Storage implementation must be provided (e.g., S3Client).
// Enables c.Upload(), c.Download(), c.DeleteFile(), and c.FileURL().
func WithStorage(s storage.Storage) Option {
	return func(a *App) error {
		a.storage = s
		return nil
	}
}

// WithJobs enables both job enqueueing and worker processing using River.
// A pgxpool.Pool is required for the job queue. Workers are started automatically
// when the app runs and stopped gracefully during shutdown.
// Use this for monolith deployments or workers that need to enqueue follow-up tasks.
//
// Example:
//
//	forge.New(
//	    forge.WithJobs(pool,
//	        job.WithTask(tasks.NewSendWelcome(mailer, repo)),
//	        job.WithScheduledTask(tasks.NewCleanupSessions(repo)),
//	        job.WithQueue("email", 10),
//	    ),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) error {
		jm, err := NewJobManager(pool, opts...)
		if err != nil {
			return fmt.Errorf("forge: job manager: %w", err)
		}
		a.jobEnqueuer = &JobEnqueuer{enqueuer: jm.Manager().Enqueuer}
		a.jobWorker = jm
		return nil
	}
}

// WithJobEnqueuer enables job enqueueing without worker processing.
// Use this for web servers that dispatch work to separate worker processes.
// Workers must be running elsewhere to process the enqueued jobs.
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) Option {
	return func(a *App) error {
		je, err := NewJobEnqueuer(pool, opts...)
		if err != nil {
			return fmt.Errorf("forge: job enqueuer: %w", err)
		}
		a.jobEnqueuer = je
		return nil
	}
}

// WithJobWorker enables job processing without enqueueing capability.
// Use this for dedicated background worker processes that don't need
// to dispatch additional jobs.
func WithJobWorker(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) error {
		jm, err := NewJobManager(pool, opts...)
		if err != nil {
			return fmt.Errorf("forge: job worker: %w", err)
		}
		a.jobWorker = jm
		// Note: jobEnqueuer stays nil - c.Enqueue() returns ErrNotConfigured
		return nil
	}
}
