package store

import (
	"github.com/iov-one/escrowd"
)

// Op is either a set or a delete operation recorded by a batch.
type Op struct {
	delete bool
	key    []byte
	value  []byte
}

// Apply performs the operation on the given store.
func (o Op) Apply(out weave.SetDeleter) error {
	if o.delete {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// IsSetOp returns true if this is a set operation.
func (o Op) IsSetOp() bool {
	return !o.delete
}

// Key returns the key the operation is acting on.
func (o Op) Key() []byte {
	return o.key
}

// Value returns the value set, nil for delete operations.
func (o Op) Value() []byte {
	return o.value
}

// NonAtomicBatch just piles up ops and executes them later on the
// underlying store. It can be used when there is no option for atomic
// writes, which is fine for the in-memory cache layers.
type NonAtomicBatch struct {
	out weave.SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch to be later written to the
// store.
func NewNonAtomicBatch(out weave.SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set adds a set operation to the batch.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, Op{key: key, value: value})
	return nil
}

// Delete adds a delete operation to the batch.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, Op{delete: true, key: key})
	return nil
}

// Write writes all queued operations to the underlying store and resets
// the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// ShowOps returns all queued operations.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
