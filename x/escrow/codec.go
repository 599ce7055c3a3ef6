package escrow

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterCodec(cdc)
}

// RegisterCodec registers the asset kinds and the messages of this
// extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterInterface((*AssetKind)(nil), nil)
	cdc.RegisterConcrete(NativeAsset{}, "escrow/native_asset", nil)
	cdc.RegisterConcrete(TokenAsset{}, "escrow/token_asset", nil)

	cdc.RegisterConcrete(&CreateMsg{}, "escrow/create", nil)
	cdc.RegisterConcrete(&ApproveMsg{}, "escrow/approve", nil)
	cdc.RegisterConcrete(&RefundMsg{}, "escrow/refund", nil)
	cdc.RegisterConcrete(&CollectRoyaltiesMsg{}, "escrow/collect_royalties", nil)
	cdc.RegisterConcrete(&RetryTransferMsg{}, "escrow/retry_transfer", nil)
	cdc.RegisterConcrete(&UpdateConfigurationMsg{}, "escrow/update_configuration", nil)
}
