// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current actor is not
// authorized to modify an event owned by someone else, while
// ErrConflict signals that an operation cannot proceed due to
// conflicting state (e.g. overlapping edition dates).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they are not authorized for. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because
// of conflicting state, such as an edition whose dates overlap a
// sibling edition. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
