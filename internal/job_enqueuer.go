package internal

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeforge/forge/pkg/job"
)

// JobEnqueuer exposes job submission to the runtime without pulling in
// worker processing. Services that only produce jobs use this.
type JobEnqueuer struct {
	enqueuer *job.Enqueuer
}

// NewJobEnqueuer builds an enqueue-only job client on the pool.
func NewJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) (*JobEnqueuer, error) {
	e, err := job.NewEnqueuer(pool, opts...)
	if err != nil {
		return nil, err
	}
	return &JobEnqueuer{enqueuer: e}, nil
}

// Enqueue submits a job for background processing.
func (e *JobEnqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	return e.enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx submits a job inside tx so it commits or rolls back with
// the caller's writes.
func (e *JobEnqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	return e.enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// Enqueuer exposes the wrapped job.Enqueuer.
func (e *JobEnqueuer) Enqueuer() *job.Enqueuer {
	return e.enqueuer
}
