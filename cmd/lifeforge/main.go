package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lifeforge/forge"
	"github.com/lifeforge/forge/cmd/lifeforge/migrations"
	"github.com/lifeforge/forge/cmd/lifeforge/tasks"
	"github.com/lifeforge/forge/middlewares"
	"github.com/lifeforge/forge/modules/achievements"
	"github.com/lifeforge/forge/modules/auth"
	"github.com/lifeforge/forge/pkg/cache"
	"github.com/lifeforge/forge/pkg/config"
	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/db"
	"github.com/lifeforge/forge/pkg/job"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/logger"
	"github.com/lifeforge/forge/pkg/mailer"
	"github.com/lifeforge/forge/pkg/mailer/resend"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/redis"
	"github.com/lifeforge/forge/pkg/session"
	"github.com/lifeforge/forge/pkg/storage"
	"github.com/lifeforge/forge/pkg/store"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, middlewares.RequestIDExtractor())

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
		return err
	}

	keyPair, err := loadOrCreateKeyPair(cfg.Server.KeyPairPath)
	if err != nil {
		return fmt.Errorf("key pair: %w", err)
	}

	tokens, err := jwt.New(cfg.Auth.JWTSecret,
		jwt.WithIssuer(cfg.Auth.Issuer),
		jwt.WithTTL(cfg.Auth.TokenTTL),
	)
	if err != nil {
		return err
	}

	// Sessions and OTP codes live in Redis when configured, otherwise
	// in process memory. Memory stores do not survive restarts.
	var (
		sessions session.Store
		codes    cache.Cache[string]
		runOpts  []forge.RunOption
		health   []forge.HealthOption
	)
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		sessions = session.NewRedis(client)
		codes = cache.NewRedis[string](client, nil)
		health = append(health, forge.WithReadinessCheck("redis", redis.Healthcheck(client)))
		runOpts = append(runOpts, forge.ShutdownHook(redis.Shutdown(client)))
	} else {
		log.Warn("REDIS_URL is not set, using in-memory session and OTP stores")
		memSessions := session.NewMemory()
		memCodes := cache.NewMemory[string]()
		sessions = memSessions
		codes = memCodes
		runOpts = append(runOpts, forge.ShutdownHook(func(context.Context) error {
			memSessions.Close()
			return memCodes.Close()
		}))
	}

	// Without a Resend API key the OTP service stays up but refuses to
	// send, so /auth/otp/request answers 503 instead of failing silently.
	var mail *mailer.Mailer
	if cfg.Mailer.APIKey != "" {
		mail = mailer.New(resend.New(cfg.Mailer), nil, mailer.Config{})
	} else {
		log.Warn("RESEND_API_KEY is not set, email login is disabled")
	}
	otpSvc := otp.New(codes, mail)

	scratchDir := cfg.Server.ScratchDir
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "lifeforge")
	}
	if err := os.MkdirAll(scratchDir, 0o700); err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}

	health = append(health, forge.WithReadinessCheck("postgres", db.Healthcheck(pool)))

	opts := []forge.Option{
		forge.WithStore(store.NewPostgres(pool, nil)),
		forge.WithKeyPair(keyPair),
		forge.WithJWT(tokens),
		forge.WithOTP(otpSvc),
		forge.WithScratchDir(scratchDir),
		forge.WithCustomLogger(log),
		forge.WithMiddleware(
			middlewares.Recover(),
			middlewares.RequestID(),
		),
		forge.WithModules(
			achievements.New(),
			auth.New(tokens, sessions),
		),
		forge.WithJobs(pool,
			job.WithScheduledTask(tasks.NewScratchSweep(scratchDir, log)),
			job.WithLogger(log),
		),
		forge.WithHealthChecks(health...),
	}

	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage.ToStorage())
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		opts = append(opts, forge.WithStorage(s3))
	} else {
		log.Warn("S3_BUCKET is not set, media uploads are disabled")
	}

	app, err := forge.New(opts...)
	if err != nil {
		return err
	}

	runOpts = append(runOpts,
		forge.Logger(log),
		forge.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		forge.ShutdownHook(db.Shutdown(pool)),
		forge.WithContext(ctx),
	)
	return app.Run(cfg.Server.Address, runOpts...)
}

// loadOrCreateKeyPair reads the RSA key pair from path, generating and
// persisting a fresh one on first start.
func loadOrCreateKeyPair(path string) (*crypto.KeyPair, error) {
	pemData, err := os.ReadFile(path)
	switch {
	case err == nil:
		return crypto.ParseKeyPair(pemData)
	case errors.Is(err, os.ErrNotExist):
		kp, err := crypto.GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		pemData, err := kp.EncodePEM()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, pemData, 0o600); err != nil {
			return nil, err
		}
		return kp, nil
	default:
		return nil, err
	}
}
