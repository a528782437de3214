package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type serverParams struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// serve runs the HTTP server until SIGINT/SIGTERM or a fatal serve
// error, then drains within the shutdown timeout. Shared by App.Run
// and the multi-domain Run.
func serve(p serverParams) error {
	if p.address == "" {
		p.address = ":8080"
	}
	if p.shutdownTimeout == 0 {
		p.shutdownTimeout = defaultShutdownTimeout
	}
	log := p.logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := &http.Server{
		Addr:              p.address,
		Handler:           p.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	base := p.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A failing startup hook aborts before the listener opens.
	for _, hook := range p.startupHooks {
		if err := hook(ctx); err != nil {
			log.Error("startup hook failed", slog.Any("error", err))
			return err
		}
	}

	// Listen separately from Serve so the bound address is known even
	// when the configured port is 0.
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	drainCtx, drainCancel := context.WithTimeout(context.Background(), p.shutdownTimeout)
	defer drainCancel()

	var errs []error
	if err := server.Shutdown(drainCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range p.shutdownHooks {
		if err := hook(drainCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}
	log.Info("shutdown completed")
	return nil
}
