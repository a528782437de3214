package job

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

const (
	defaultMaxWorkers = 100
	defaultQueue      = river.QueueDefault
)

// Manager runs background jobs through River. It embeds Enqueuer, so
// one value covers both producing and processing; the embedded methods
// gain a registry check so unknown task names fail at enqueue time.
type Manager struct {
	*Enqueuer
	registry *taskRegistry
	workers  *river.Workers
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager builds a manager from the registered tasks and queues. The
// River client exists from this point, so jobs can be enqueued before
// Start begins processing them.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	periodicJobs, err := registerSchedules(cfg)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &forgeTaskWorker{
		registry: cfg.registry,
		logger:   cfg.logger,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queueConfigs(cfg),
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{
			pool:   pool,
			client: client,
			logger: cfg.logger,
		},
		registry: cfg.registry,
		workers:  workers,
		logger:   cfg.logger,
	}, nil
}

// queueConfigs maps the declared queues onto River queue configs, with
// the default queue always present.
func queueConfigs(cfg *config) map[string]river.QueueConfig {
	queues := make(map[string]river.QueueConfig, len(cfg.queues)+1)
	queues[defaultQueue] = river.QueueConfig{MaxWorkers: cfg.maxWorkers}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}
	return queues
}

// registerSchedules turns cron schedules into River periodic jobs and
// registers their handlers in the shared registry, so the single worker
// kind dispatches scheduled and payload tasks alike.
func registerSchedules(cfg *config) ([]*river.PeriodicJob, error) {
	var periodic []*river.PeriodicJob
	for _, sched := range cfg.schedules {
		cronSchedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.schedule, err)
		}

		name := sched.name
		periodic = append(periodic, river.NewPeriodicJob(
			cronSchedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &forgeTaskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))

		cfg.registry.register(sched.name, &scheduledTaskExecutor{
			handler: sched.handler,
		})
	}
	return periodic, nil
}

// Start begins processing. Jobs enqueued earlier are picked up once the
// workers come online.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}
	m.started = true

	m.logger.Info("job manager started",
		slog.Int("tasks", len(m.registry.names())),
	)
	return nil
}

// Stop drains the workers, waiting for in-flight jobs to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}
	m.started = false

	m.logger.Info("job manager stopped")
	return nil
}

// Enqueue schedules a registered task for processing. Unlike the bare
// Enqueuer it rejects names with no registered handler.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx schedules a registered task inside tx; the job becomes
// visible to workers only after the transaction commits, which keeps
// database changes and their follow-up work atomic.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// Shutdown adapts Stop to the shutdown-hook signature.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

// StartFunc adapts Start to the startup-hook signature.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}

// forgeTaskArgs is the single River args type every task runs under:
// the task name selects the handler and the payload rides along as raw
// JSON.
type forgeTaskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (forgeTaskArgs) Kind() string {
	return "forge:task"
}

// forgeTaskWorker dispatches every job of kind forge:task through the
// registry.
type forgeTaskWorker struct {
	river.WorkerDefaults[forgeTaskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *forgeTaskWorker) Work(ctx context.Context, job *river.Job[forgeTaskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	log := w.logger.With(
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
	)
	log.DebugContext(ctx, "executing task", slog.Int("attempt", job.Attempt))

	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		log.ErrorContext(ctx, "task failed",
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)
		return err
	}

	log.DebugContext(ctx, "task completed")
	return nil
}

type scheduledTaskExecutor struct {
	handler scheduledHandler
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}

// cronScheduleAdapter satisfies river.PeriodicSchedule with a robfig
// cron schedule.
type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
