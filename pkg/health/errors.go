package health

import "errors"

var (
	// ErrCheckFailed marks a probe that reported unhealthy.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a probe that overran its deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)
