package job

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Enqueuer dispatches jobs without running any workers, for processes
// that produce work consumed by a separate worker fleet. Task names are
// not validated here; an unknown name surfaces on the worker side.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures NewEnqueuer.
type EnqueuerOption func(*enqueuerConfig)

type enqueuerConfig struct {
	logger *slog.Logger
}

// WithEnqueuerLogger routes enqueue logs to l.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(c *enqueuerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewEnqueuer builds an insert-only River client, with no workers or
// queues attached.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := enqueuerConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{pool: pool, client: client, logger: cfg.logger}, nil
}

// Enqueue inserts a job for later processing by a worker.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err = e.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	return nil
}

// EnqueueTx inserts a job inside tx, deferring its visibility to
// workers until the transaction commits.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err = e.client.InsertTx(ctx, tx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue tx: %w", err)
	}
	return nil
}

// buildJobArgs translates a task name, payload, and enqueue options
// into River insert arguments. Shared by Enqueuer and Manager.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*forgeTaskArgs, *river.InsertOpts, error) {
	args := &forgeTaskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
		args.Payload = json.RawMessage(raw)
	}

	var cfg enqueueConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.uniqueFor > 0 && cfg.uniqueKey != "" {
		args.UniqueKey = cfg.uniqueKey
	}

	return args, cfg.riverInsertOpts(), nil
}

// riverInsertOpts maps the per-enqueue settings onto River's options,
// leaving zero values at River's defaults.
func (c *enqueueConfig) riverInsertOpts() *river.InsertOpts {
	opts := &river.InsertOpts{
		Queue:       c.queue,
		MaxAttempts: max(c.maxAttempts, 0),
		Priority:    max(c.priority, 0),
		Tags:        c.tags,
	}
	if c.scheduledAt != nil {
		opts.ScheduledAt = *c.scheduledAt
	}
	if c.uniqueFor > 0 {
		opts.UniqueOpts = river.UniqueOpts{ByPeriod: c.uniqueFor}
	}
	return opts
}
