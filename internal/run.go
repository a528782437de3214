package internal

import (
	"context"
	"errors"
	"net/http"

	"github.com/lifeforge/forge/pkg/hostrouter"
)

// Run serves one or more Apps keyed by host pattern and blocks until
// shutdown. Job workers configured on any mounted App start before the
// listener opens and drain during shutdown.
//
//	api, err := forge.New(
//	    forge.WithModules(modules...),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	website, err := forge.New(
//	    forge.WithHandlers(handlers.NewLandingHandler()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = forge.Run(
//	    forge.Domain("api.acme.com", api),
//	    forge.Domain("*.acme.com", website),
//	    forge.Address(":8080"),
//	    forge.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var handler http.Handler
	var apps []*App

	switch {
	case len(cfg.domains) > 0:
		routes := make(hostrouter.Routes)
		for pattern, app := range cfg.domains {
			routes[pattern] = app.Router()
			apps = append(apps, app)
		}

		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback.Router()
			apps = append(apps, cfg.fallback)
		}
		handler = hostrouter.New(routes, fallback)

	case cfg.fallback != nil:
		handler = cfg.fallback.Router()
		apps = append(apps, cfg.fallback)

	default:
		return errors.New("forge.Run: no domains or fallback configured")
	}

	// Apps may share a worker; start and stop each one once.
	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks
	seen := make(map[*JobManager]bool)
	for _, app := range apps {
		worker := app.JobWorker()
		if worker == nil || seen[worker] {
			continue
		}
		seen[worker] = true
		startupHooks = append([]func(context.Context) error{worker.Manager().StartFunc()}, startupHooks...)
		shutdownHooks = append(shutdownHooks, worker.Shutdown())
	}

	return serve(serverParams{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
