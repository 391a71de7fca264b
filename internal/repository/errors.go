// Package repository defines the MySQL data access layer: the read-only
// fixture catalog and the scorer accounts with their refresh tokens.  The
// sentinel errors below allow higher layers such as handlers to
// distinguish between different failure scenarios.
package repository

import "errors"

// ErrFixtureNotFound is returned when no fixture has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrFixtureNotFound = errors.New("fixture not found")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrRefreshInvalid is returned for unknown, revoked or expired refresh
// tokens.
var ErrRefreshInvalid = errors.New("refresh token invalid")
