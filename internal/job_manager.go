package internal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeforge/forge/pkg/job"
)

// JobManager owns background job processing for the runtime.
type JobManager struct {
	manager *job.Manager
}

// NewJobManager builds a job manager on the pool.
func NewJobManager(pool *pgxpool.Pool, opts ...job.Option) (*JobManager, error) {
	m, err := job.NewManager(pool, opts...)
	if err != nil {
		return nil, err
	}
	return &JobManager{manager: m}, nil
}

// Start launches the workers and scheduler.
func (m *JobManager) Start(ctx context.Context) error {
	return m.manager.Start(ctx)
}

// Stop drains in-flight jobs and shuts the workers down.
func (m *JobManager) Stop(ctx context.Context) error {
	return m.manager.Stop(ctx)
}

// Manager exposes the wrapped job.Manager.
func (m *JobManager) Manager() *job.Manager {
	return m.manager
}

// Shutdown adapts Stop to the runtime's shutdown hook signature.
func (m *JobManager) Shutdown() func(context.Context) error {
	return m.manager.Shutdown()
}
