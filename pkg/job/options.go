package job

import (
	"context"
	"log/slog"
)

type config struct {
	registry   *taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a payload-carrying task. Any value with Name() and
// Handle(ctx, P) methods qualifies; the payload type P is taken from
// the Handle signature.
//
//	type SendWelcome struct {
//	    mailer mail.Mailer
//	}
//
//	func (t *SendWelcome) Name() string { return "send_welcome" }
//	func (t *SendWelcome) Handle(ctx context.Context, p SendWelcomePayload) error {
//	    return t.mailer.Send(ctx, "welcome", p.Email)
//	}
//
//	job.WithTask(tasks.NewSendWelcome(mailer))
func WithTask[P any, T typedTask[P]](task T) Option {
	return func(c *config) {
		wrapper := newTaskWrapper[P, T](task)
		c.registry.register(task.Name(), wrapper)
	}
}

// scheduledHandler is the Handle method of a scheduled task, detached
// from its receiver.
type scheduledHandler func(ctx context.Context) error

// scheduleConfig pairs a cron expression with the handler it fires.
type scheduleConfig struct {
	handler  scheduledHandler
	name     string
	schedule string
}

// WithScheduledTask registers a periodic task. The value must carry
// Name(), Schedule(), and Handle(ctx) methods, where Schedule returns a
// five-field cron expression (min hour day month weekday).
//
//	type CleanupSessions struct {
//	    repo *repository.Queries
//	}
//
//	func (t *CleanupSessions) Name() string     { return "cleanup_sessions" }
//	func (t *CleanupSessions) Schedule() string { return "0 * * * *" }
//	func (t *CleanupSessions) Handle(ctx context.Context) error {
//	    return t.repo.DeleteExpiredSessions(ctx)
//	}
//
//	job.WithScheduledTask(tasks.NewCleanupSessions(repo))
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue declares a named queue with its own worker count. Tasks
// enqueued without job.InQueue land on the default queue.
//
//	job.WithQueue("email", 10)
//	job.WithQueue("reports", 2)
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger routes job processing logs to l. Unset, a noop logger is
// used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count for the default queue and any
// queue declared without one (default 100).
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
