package jetton

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x/cash"
)

const optKey = "jetton"

// GenesisMinter describes a token created from the genesis file, together
// with the initial balances.
type GenesisMinter struct {
	Admin      weave.Address    `json:"admin"`
	Content    string           `json:"content"`
	WalletCode []byte           `json:"wallet_code"`
	Balances   []GenesisBalance `json:"balances"`
}

// GenesisBalance is the amount of tokens minted to the owner at genesis.
type GenesisBalance struct {
	Owner  weave.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}

// Initializer fulfils the Initializer interface to load tokens from the
// genesis file. Minters are created in order, so the first one gets the
// master address of MinterCondition(SequenceID(1)).
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis creates minters and mints the initial balances.
func (Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	var minters []GenesisMinter
	if err := opts.ReadOptions(optKey, &minters); err != nil {
		return err
	}
	// Genesis does not send notifications, so neither the mover nor the
	// scheduler are used.
	ctrl := NewController(cash.NewController(cash.NewBucket()), nil)
	for i, gm := range minters {
		master, err := ctrl.CreateMinter(db, gm.Admin, gm.Content, gm.WalletCode)
		if err != nil {
			return errors.Wrapf(err, "minter %d", i)
		}
		for j, b := range gm.Balances {
			if err := b.Owner.Validate(); err != nil {
				return errors.Wrapf(err, "minter %d balance %d", i, j)
			}
			if err := ctrl.Mint(db, master, b.Owner, b.Amount); err != nil {
				return errors.Wrapf(err, "minter %d balance %d", i, j)
			}
		}
	}
	return nil
}
