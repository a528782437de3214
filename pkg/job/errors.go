package job

import "errors"

var (
	// ErrNotConfigured means job features were used on an app built
	// without WithJobs.
	ErrNotConfigured = errors.New("job: not configured")

	// ErrUnknownTask means the named task was never registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload means a payload could not be unmarshaled into
	// the task's argument type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted guards against double Start on a manager.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted guards against stopping an idle manager.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired means a manager or enqueuer was built without a
	// database pool.
	ErrPoolRequired = errors.New("job: pool is required")
)
