package domain

import "errors"

var (
	// ErrSourceNotFound is returned when the Caddyfile does not exist.
	ErrSourceNotFound = errors.New("caddyfile not found")
	// ErrReadFailure is returned when the Caddyfile exists but cannot be read.
	ErrReadFailure = errors.New("failed to read caddyfile")
	// ErrSnapshotUnavailable is returned when no snapshot has been written yet.
	ErrSnapshotUnavailable = errors.New("database not ready")
)
