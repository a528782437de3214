package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/health"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/logger"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/schema"
	"github.com/lifeforge/forge/pkg/storage"
	"github.com/lifeforge/forge/pkg/store"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle: schema registration,
// module mounting, middleware, and graceful shutdown. App is
// immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger

	registry   *schema.Registry
	store      store.Store
	keyPair    *crypto.KeyPair
	jwtService *jwt.Service
	storage    storage.Storage
	otpService *otp.Service
	scratchDir string

	jobEnqueuer *JobEnqueuer
	jobWorker   *JobManager

	middlewares  []Middleware
	handlers     []Handler
	staticRoutes []staticRoute
	modules      []federation.Module
	providers    []federation.Provider
	categories   []federation.Category
	routes       []mountedRoute
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options. Mount
// failures (schema collisions, malformed route trees, misconfigured
// controllers) are returned here, never deferred to request time.
//
// Example:
//
//	app, err := forge.New(
//	    forge.WithStore(pg),
//	    forge.WithJWT(tokens),
//	    forge.WithModules(achievements.New()),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router:   chi.NewRouter(),
		logger:   logger.NewNope(), // Default: noop logger (before options)
		registry: schema.NewRegistry(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if err := a.setupRoutes(); err != nil {
		return nil, err
	}
	return a, nil
}

// Router returns the underlying chi.Router for the App.
// This is used internally for composing multi-domain routing.
func (a *App) Router() chi.Router {
	return a.router
}

// Registry returns the aggregated schema registry.
func (a *App) Registry() *schema.Registry {
	return a.registry
}

// Modules returns the mounted feature modules in mount order.
func (a *App) Modules() []federation.Module {
	return a.modules
}

// JobWorker returns the job worker if configured, nil otherwise.
// This is used internally for multi-domain routing to collect workers.
func (a *App) JobWorker() *JobManager {
	return a.jobWorker
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// Module startup hooks run before the server accepts traffic; job
// workers start automatically and stop gracefully during shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	for _, p := range a.providers {
		startupHooks = append(startupHooks, p.Startup)
	}

	// Auto-register worker hooks if configured
	if a.jobWorker != nil {
		startupHooks = append([]func(context.Context) error{a.jobWorker.Manager().StartFunc()}, startupHooks...)
		shutdownHooks = append(shutdownHooks, a.jobWorker.Shutdown())
	}

	return serve(serverParams{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware, handlers, and
// every mounted module's route tree.
func (a *App) setupRoutes() error {
	// Set custom error handlers on chi router
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	// Apply global middleware
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	// Framework endpoints: key exchange and route listing.
	a.router.Get("/forge/key", a.serveKey)
	a.router.Get("/forge/routes", a.serveRoutes)
	a.router.Get("/forge/modules", a.serveModules)

	// Register plain handlers
	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	// Mount feature modules: schemas first so existence checks can
	// resolve across modules, then route trees.
	seen := make(map[string]string, len(a.modules))
	for _, m := range a.modules {
		manifest := m.Manifest()
		if err := a.registry.Register(manifest.Name, m.Collections()...); err != nil {
			return err
		}
	}
	if binder, ok := a.store.(interface{ BindRegistry(*schema.Registry) }); ok {
		binder.BindRegistry(a.registry)
	}
	for _, m := range a.modules {
		manifest := m.Manifest()
		key := federation.RouteKey(manifest)
		if owner, taken := seen[key]; taken {
			return errors.New("modules " + owner + " and " + manifest.Name + " both claim route key " + key)
		}
		seen[key] = manifest.Name

		tree := Tree(m.Routes())
		sub := chi.NewRouter()
		if err := a.mountTree(sub, "/"+key, tree); err != nil {
			return err
		}
		a.router.Mount("/"+key, sub)
	}
	return nil
}

// serveKey publishes the server's RSA public key for session-key
// wrapping.
func (a *App) serveKey(w http.ResponseWriter, r *http.Request) {
	if a.keyPair == nil {
		http.Error(w, "encryption is not configured", http.StatusServiceUnavailable)
		return
	}
	pem, err := a.keyPair.PublicPEM()
	if err != nil {
		http.Error(w, "failed to encode public key", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	_, _ = w.Write(pem)
}

// RouteInfo is one entry of the route listing, also consumed by the
// client generator.
type RouteInfo struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	Description  string `json:"description,omitempty"`
	Module       string `json:"module"`
	Encrypted    bool   `json:"encrypted"`
	Public       bool   `json:"public"`
	Downloadable bool   `json:"downloadable"`
}

// Routes returns the mounted controller routes in mount order.
func (a *App) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, len(a.routes))
	for _, mr := range a.routes {
		infos = append(infos, RouteInfo{
			Method:       mr.controller.method,
			Path:         mr.path,
			Description:  mr.controller.description,
			Module:       mr.controller.moduleID,
			Encrypted:    mr.controller.Encrypted(),
			Public:       mr.controller.Public(),
			Downloadable: mr.controller.downloadable,
		})
	}
	return infos
}

func (a *App) serveRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessEnvelope(a.Routes()))
}

// serveModules lists mounted module manifests and the ordered
// navigation categories.
func (a *App) serveModules(w http.ResponseWriter, r *http.Request) {
	manifests := make([]federation.Manifest, 0, len(a.modules))
	for _, m := range a.modules {
		manifests = append(manifests, m.Manifest())
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope(map[string]any{
		"modules":    manifests,
		"categories": a.categories,
	}))
}

// handleError converts handler errors into error envelopes using the
// configured error handler, falling back to the built-in one.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		_ = a.errorHandler(c, err)
		return
	}
	a.defaultErrorHandler(c, err)
}

// defaultErrorHandler maps errors onto the envelope taxonomy: client
// errors pass their message through, server errors log full detail
// and surface a generic message.
func (a *App) defaultErrorHandler(c Context, err error) {
	rc, _ := c.(*requestContext)

	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
	case errors.Is(err, store.ErrNotFound):
		httpErr = ErrNotFound("record not found", WithError(err))
	case errors.Is(err, store.ErrBadFilter):
		httpErr = ErrBadRequest(err.Error(), WithError(err))
	default:
		httpErr = ErrInternalServer("internal server error", WithError(err))
	}

	if httpErr.Code >= http.StatusInternalServerError {
		a.logger.ErrorContext(c.Context(), "request failed",
			slog.Int("status", httpErr.Code),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}

	env := ErrorEnvelope(httpErr.Message, httpErr.Fields)
	if rc != nil {
		_ = rc.writeEnvelope(httpErr.Code, env)
		return
	}
	writeJSON(c.Response(), httpErr.Code, env)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	forge.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
