package db

import "errors"

// Sentinel errors wrapped around driver and goose failures so callers
// can branch with errors.Is without depending on those packages.
var (
	ErrFailedToParseDBConfig    = errors.New("db: parse connection config")
	ErrFailedToOpenDBConnection = errors.New("db: open connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db: set migration dialect")
	ErrApplyMigrations          = errors.New("db: apply migrations")
)
