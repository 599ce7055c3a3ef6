package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/jetton"
)

const optKey = "escrow"

// GenesisEscrow describes an escrow deployed from the genesis file. A deal
// without a token is paid in the native currency.
type GenesisEscrow struct {
	Price              uint64        `json:"price"`
	Token              *TokenAsset   `json:"token,omitempty"`
	RoyaltyNumerator   uint64        `json:"royalty_numerator"`
	RoyaltyDenominator uint64        `json:"royalty_denominator"`
	Seller             weave.Address `json:"seller"`
	Buyer              weave.Address `json:"buyer"`
	Guarantor          weave.Address `json:"guarantor"`
}

// DealConfig returns the configuration of the described deal.
func (g GenesisEscrow) DealConfig() DealConfig {
	var asset AssetKind = NativeAsset{}
	if g.Token != nil {
		asset = *g.Token
	}
	return DealConfig{
		Price:              g.Price,
		Asset:              asset,
		RoyaltyNumerator:   g.RoyaltyNumerator,
		RoyaltyDenominator: g.RoyaltyDenominator,
		Seller:             g.Seller,
		Buyer:              g.Buyer,
		Guarantor:          g.Guarantor,
	}
}

// Initializer fulfils the Initializer interface to load the configuration
// and the escrows from the genesis file.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis stores the escrow configuration and deploys the genesis
// escrows. Token masters must be created by an earlier initializer.
func (Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	if err := gconf.InitConfig(db, opts, confPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var escrows []GenesisEscrow
	if err := opts.ReadOptions(optKey, &escrows); err != nil {
		return err
	}
	cashctrl := cash.NewController(cash.NewBucket())
	ctrl := NewController(cashctrl, jetton.NewController(cashctrl, nil), nil)
	for i, g := range escrows {
		config := g.DealConfig()
		if err := config.Validate(); err != nil {
			return errors.Wrapf(err, "escrow %d", i)
		}
		if _, _, err := ctrl.Deploy(db, nil, config, nil); err != nil {
			return errors.Wrapf(err, "escrow %d", i)
		}
	}
	return nil
}
