package sigs

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterCodec(cdc)
}

// RegisterCodec registers the messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&BumpSequenceMsg{}, "sigs/bump_sequence", nil)
}
