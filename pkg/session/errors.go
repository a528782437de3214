package session

import "errors"

var (
	// ErrNotFound indicates no pending session exists for the given ID.
	ErrNotFound = errors.New("session: pending session not found")

	// ErrExpired indicates the pending session's lifetime has elapsed.
	ErrExpired = errors.New("session: pending session expired")

	// ErrAlreadyResolved indicates the session was already approved.
	ErrAlreadyResolved = errors.New("session: pending session already approved")
)
