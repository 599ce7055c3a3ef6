package escrow

import (
	"github.com/iov-one/escrowd/errors"
)

var (
	// ErrUnauthorized is returned when the sender does not hold the role
	// required by the action.
	ErrUnauthorized = errors.Register(501, "unauthorized")

	// ErrNotCompleted is returned when royalties are collected from an
	// escrow that was neither approved nor refunded.
	ErrNotCompleted = errors.Register(502, "not completed")

	ErrAlreadyCompleted = errors.Register(503, "already completed")
)
