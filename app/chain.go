package app

import (
	"reflect"

	"github.com/iov-one/escrowd"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []weave.Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final Handler
(often a Router), returns a Handler that will execute this whole stack.

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  sigs.NewDecorator(),
	  cash.NewFeeDecorator(authFn, cashCtrl),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

Nil decorators are skipped, which makes optional steps easy to express.
*/
func ChainDecorators(chain ...weave.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain
func (d Decorators) Chain(chain ...weave.Decorator) Decorators {
	chain = cutoffNil(chain)
	joined := make([]weave.Decorator, 0, len(d.chain)+len(chain))
	joined = append(joined, d.chain...)
	joined = append(joined, chain...)
	return Decorators{chain: joined}
}

// cutoffNil removes in place all nil values, including typed nil pointers,
// from the given slice.
func cutoffNil(ds []weave.Decorator) []weave.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if isNil(ds[i]) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

func isNil(d weave.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the stack and returns a concrete Handler that passes
// through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h weave.Handler) weave.Handler {
	// The top of the chain is executed first, so wrap from the bottom.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
type step struct {
	d    weave.Decorator
	next weave.Handler
}

var _ weave.Handler = step{}

func (s step) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
