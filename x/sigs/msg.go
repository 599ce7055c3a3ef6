package sigs

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

var _ weave.Msg = (*BumpSequenceMsg)(nil)

// BumpSequenceMsg increments the sequence of the signer by the given
// value. Processing of the transaction itself accounts for one.
type BumpSequenceMsg struct {
	Increment uint32 `json:"increment"`
}

func (BumpSequenceMsg) Path() string {
	return "sigs/bump_sequence"
}

func (m *BumpSequenceMsg) Validate() error {
	if m.Increment < 1 {
		return errors.Wrap(errors.ErrMsg, "increment must be greater than zero")
	}
	// Limit the increment so that sequence is not exhausted too fast.
	if m.Increment > 1000 {
		return errors.Wrap(errors.ErrMsg, "increment must not be greater than 1000")
	}
	return nil
}
