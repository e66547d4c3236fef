// Package repository defines error values reused across repositories.
// These sentinels let handlers distinguish failure scenarios: for
// example ErrForbidden means the caller does not own the resource,
// while ErrSeatTaken means a ticket insert collided with the composite
// unique key on (journey, cargo, seat).
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSeatTaken is returned when a ticket insert violates the unique
// (journey_id, cargo, seat) key. The constraint is the final arbiter
// under concurrent order creation; handlers translate this into 409
// and roll the whole order back.
var ErrSeatTaken = errors.New("seat already taken")

// ErrInUse is returned when a delete cannot proceed because dependent
// rows reference the record and the schema restricts the cascade.
var ErrInUse = errors.New("resource in use")

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (error code 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
