package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/escrowd"
)

var counter uint64

// NewCondition returns a new, unique condition. Each call returns a
// different value.
func NewCondition() weave.Condition {
	return weave.NewCondition("weavetest", "test", SequenceID(atomic.AddUint64(&counter, 1)))
}

// SequenceID returns the 8 byte big endian representation of n, as used by
// the orm sequences.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
