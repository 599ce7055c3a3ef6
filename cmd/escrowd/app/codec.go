package app

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
	"github.com/iov-one/escrowd/x/sigs"
	amino "github.com/tendermint/go-amino"
)

// cdc encodes transactions and scheduled tasks. Every message that can be
// routed must be registered here.
var cdc = MakeCodec()

// MakeCodec returns a codec with all escrowd messages registered.
func MakeCodec() *amino.Codec {
	c := amino.NewCodec()
	c.RegisterInterface((*weave.Msg)(nil), nil)
	sigs.RegisterCodec(c)
	cash.RegisterCodec(c)
	jetton.RegisterCodec(c)
	escrow.RegisterCodec(c)
	return c
}
