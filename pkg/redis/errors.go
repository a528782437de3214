package redis

import "errors"

// Sentinel errors returned by Open and Healthcheck. Wrapped driver
// errors are joined in, so errors.Is works against these while the
// underlying cause stays inspectable.
var (
	ErrEmptyConnectionURL = errors.New("redis: connection URL is empty")
	ErrFailedToParseURL   = errors.New("redis: parse connection URL")
	ErrConnectionFailed   = errors.New("redis: connect")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)
