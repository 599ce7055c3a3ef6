package jetton

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterCodec(cdc)
}

// RegisterCodec registers the messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&CreateMinterMsg{}, "jetton/create_minter", nil)
	cdc.RegisterConcrete(&MintMsg{}, "jetton/mint", nil)
	cdc.RegisterConcrete(&TransferMsg{}, "jetton/transfer", nil)
	cdc.RegisterConcrete(&TransferNotificationMsg{}, "jetton/transfer_notification", nil)
	cdc.RegisterConcrete(&ExcessesMsg{}, "jetton/excesses", nil)
	cdc.RegisterConcrete(&TransferFailedMsg{}, "jetton/transfer_failed", nil)
}
