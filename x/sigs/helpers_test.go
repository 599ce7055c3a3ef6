package sigs

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/weavetest"
)

// signedTx is a transaction carrying a test message and a set of
// signatures.
type signedTx struct {
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)
var _ weave.Tx = (*signedTx)(nil)

func (tx *signedTx) GetMsg() (weave.Msg, error) {
	return &weavetest.Msg{RoutePath: "test/signed"}, nil
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}
