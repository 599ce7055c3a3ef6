package cron

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	amino "github.com/tendermint/go-amino"
)

// TaskMarshaler represents an encoded that is used to marshal and
// unmarshal a task. This interface is to be implemented by this package
// user.
type TaskMarshaler interface {
	// MarshalTask serialize given data into its binary format.
	MarshalTask(auth []weave.Condition, msg weave.Msg) ([]byte, error)

	// UnmarshalTask deserialize data (created using MarshalTask method)
	// from its binary representation into Go structures.
	UnmarshalTask([]byte) (auth []weave.Condition, msg weave.Msg, err error)
}

// Bouncer is implemented by messages that must notify their origin when
// their execution as a task failed.
type Bouncer interface {
	// BounceMsg returns the message that is scheduled when this message
	// failed with the given error. Returning nil means no bounce.
	BounceMsg(cause error) weave.Msg
}

type task struct {
	Auth []weave.Condition
	Msg  weave.Msg
}

// AminoTaskMarshaler implements TaskMarshaler using an amino codec. The
// codec must have weave.Msg registered as an interface together with all
// messages that are scheduled.
type AminoTaskMarshaler struct {
	cdc *amino.Codec
}

var _ TaskMarshaler = (*AminoTaskMarshaler)(nil)

// NewAminoTaskMarshaler returns a marshaler using given codec.
func NewAminoTaskMarshaler(cdc *amino.Codec) *AminoTaskMarshaler {
	return &AminoTaskMarshaler{cdc: cdc}
}

func (m *AminoTaskMarshaler) MarshalTask(auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	if msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	raw, err := m.cdc.MarshalBinaryBare(task{Auth: auth, Msg: msg})
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

func (m *AminoTaskMarshaler) UnmarshalTask(raw []byte) ([]weave.Condition, weave.Msg, error) {
	var t task
	if err := m.cdc.UnmarshalBinaryBare(raw, &t); err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if t.Msg == nil {
		return nil, nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return t.Auth, t.Msg, nil
}
