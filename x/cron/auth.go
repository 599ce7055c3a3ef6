package cron

import (
	"context"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/x"
)

type ctxKey int

const (
	ctxKeyConditions ctxKey = iota
)

// withAuth returns a context instance with the conditions attached.
// Attached conditions are used for authentication by authenticator
// implementation from this package.
func withAuth(ctx weave.Context, cs []weave.Condition) weave.Context {
	if old, ok := ctx.Value(ctxKeyConditions).([]weave.Condition); ok {
		cs = append(append([]weave.Condition{}, cs...), old...)
	}
	return context.WithValue(ctx, ctxKeyConditions, cs)
}

// Authenticator implements an x.Authenticator interface that should be
// used to authorize cron task execution.
type Authenticator struct{}

var _ x.Authenticator = (*Authenticator)(nil)

// GetConditions implements x.Authenticator interface.
func (Authenticator) GetConditions(ctx weave.Context) []weave.Condition {
	val, _ := ctx.Value(ctxKeyConditions).([]weave.Condition)
	return val
}

// HasAddress implements x.Authenticator interface.
func (a Authenticator) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
