// Package job runs background work on River, the Postgres-backed queue.
//
// A task is an ordinary struct; the package registers it through structural
// typing, so task code never imports a worker interface. On top of River it
// layers periodic scheduling, transactional enqueueing, named queues with
// per-queue concurrency, retries, uniqueness constraints, and a health probe
// for readiness endpoints.
//
// # Defining Tasks
//
// A task exposes Name() and a typed Handle(ctx, payload) method. The payload
// type is inferred from the method signature:
//
//	type SendWelcome struct {
//	    mailer mail.Mailer
//	    repo   *repository.Queries
//	}
//
//	func NewSendWelcome(mailer mail.Mailer, repo *repository.Queries) *SendWelcome {
//	    return &SendWelcome{mailer: mailer, repo: repo}
//	}
//
//	func (t *SendWelcome) Name() string { return "send_welcome" }
//
//	func (t *SendWelcome) Handle(ctx context.Context, p SendWelcomePayload) error {
//	    user, err := t.repo.GetUser(ctx, p.UserID)
//	    if err != nil {
//	        return err
//	    }
//	    return t.mailer.Send(ctx, "welcome", user.Email, user)
//	}
//
//	type SendWelcomePayload struct {
//	    UserID string `json:"user_id"`
//	}
//
// # Periodic Tasks
//
// A task that also implements Schedule() string runs on the returned cron
// expression instead of waiting for an enqueue:
//
//	type CleanupSessions struct {
//	    repo *repository.Queries
//	}
//
//	func (t *CleanupSessions) Schedule() string { return "0 * * * *" } // hourly
//
//	func (t *CleanupSessions) Handle(ctx context.Context) error {
//	    return t.repo.DeleteExpiredSessions(ctx)
//	}
//
// # App Integration
//
// Wire the manager into an application with WithJobs:
//
//	import (
//	    "github.com/lifeforge/forge"
//	    "github.com/lifeforge/forge/pkg/job"
//	)
//
//	app := forge.New(
//	    forge.WithJobs(pool,
//	        job.WithTask(tasks.NewSendWelcome(mailer, repo)),
//	        job.WithTask(tasks.NewProcessPayment(stripe, repo)),
//	        job.WithScheduledTask(tasks.NewCleanupSessions(repo), "cleanup_sessions"),
//	        job.WithQueue("email", 10),
//	        job.WithQueue("payments", 5),
//	        job.WithLogger(slog.Default()),
//	    ),
//	)
//
// # Enqueueing
//
// Handlers enqueue through the request context:
//
//	func (h *UserHandler) Create(c forge.Context) error {
//	    // ... create user ...
//
//	    err := c.Enqueue("send_welcome", tasks.SendWelcomePayload{
//	        UserID: user.ID,
//	    })
//
//	    // with scheduling, queue routing, and a retry cap
//	    err := c.Enqueue("send_reminder", payload,
//	        job.ScheduledIn(24*time.Hour),
//	        job.InQueue("email"),
//	        job.MaxAttempts(3),
//	    )
//
//	    return c.JSON(http.StatusCreated, user)
//	}
//
// # Transactional Enqueueing
//
// EnqueueTx writes the job row inside the caller's transaction, so the job
// becomes visible only if the surrounding writes commit:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    user, err := repo.CreateUser(ctx, tx, req)
//	    if err != nil {
//	        return err
//	    }
//
//	    return c.EnqueueTx(tx, "send_welcome", tasks.SendWelcomePayload{
//	        UserID: user.ID,
//	    })
//	})
//
// # Uniqueness
//
// Uniqueness options collapse duplicate enqueues within a window:
//
//	// at most one password reset per user per hour
//	c.Enqueue("send_password_reset", payload,
//	    job.UniqueFor(time.Hour),
//	    job.UniqueKey(userID),
//	)
//
// # Health Checks
//
// [Healthcheck] reports whether the manager is running, for readiness probes:
//
//	forge.WithHealthChecks(
//	    forge.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    forge.WithReadinessCheck("jobs", job.Healthcheck(manager)),
//	)
//
// # Errors
//
// Sentinel errors cover the failure modes callers branch on:
//
//   - [ErrNotConfigured] - no job manager wired into the app
//   - [ErrUnknownTask] - enqueue referenced an unregistered task name
//   - [ErrInvalidPayload] - payload could not be decoded for the task
//   - [ErrAlreadyStarted] - Start called twice
//   - [ErrNotStarted] - Stop or probe called before Start
//   - [ErrHealthcheckFailed] - the manager is not healthy
//
// # Migrations
//
// River stores jobs in Postgres tables (river_job, river_leader, river_queue)
// that must exist before the manager starts. Apply River's migration SQL
// first: https://riverqueue.com/docs/migrations
package job
