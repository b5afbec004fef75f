// Package repository implements data access over the shared *sql.DB pool.
// This file defines sentinel errors reused across repositories so handlers
// can map failure modes to HTTP statuses without string matching.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row.  Handlers translate
// it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing unique
// key, such as redeeming a second code for a teacher the student is already
// linked to.  Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrCodeNotRedeemable is returned when a linking code does not exist, was
// already claimed by another student, or has expired.  The three cases are
// deliberately collapsed: clients get one "invalid or expired code" answer
// so a code cannot be probed for its state.
var ErrCodeNotRedeemable = errors.New("invalid or expired code")

// isDuplicateKey detects the MySQL 1062 duplicate-entry error without
// importing driver internals.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
