package escrow

import (
	"bytes"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/jetton"
)

// AssetMover moves the deal asset held in custody by an escrow.
type AssetMover interface {
	// Custody returns the amount of the deal asset held by the escrow.
	Custody(db weave.ReadOnlyKVStore) (uint64, error)

	// Fee returns the fee paid for a single transfer.
	Fee() (coin.Coin, error)

	// Move transfers amount units to the given address. A transfer that
	// completes asynchronously is returned as a pending leg.
	Move(ctx weave.Context, db weave.KVStore, queryID uint64, to weave.Address, amount uint64) (*PendingLeg, error)
}

// moverEnv is everything an asset mover may need to access the ledgers.
type moverEnv struct {
	cash      cash.Controller
	jetton    *jetton.Controller
	scheduler weave.Scheduler
}

func (NativeAsset) verify(weave.ReadOnlyKVStore, moverEnv) error {
	return nil
}

func (NativeAsset) newMover(env moverEnv, escrow weave.Condition, conf *Configuration) AssetMover {
	return &nativeMover{
		cash:    env.cash,
		account: escrow.Address(),
		conf:    conf,
	}
}

type nativeMover struct {
	cash    cash.Controller
	account weave.Address
	conf    *Configuration
}

func (m *nativeMover) Custody(db weave.ReadOnlyKVStore) (uint64, error) {
	coins, err := m.cash.Balance(db, m.account)
	if err != nil {
		return 0, errors.Wrap(err, "custody")
	}
	return coins.Get(m.conf.NativeTicker).Nanos()
}

func (m *nativeMover) Fee() (coin.Coin, error) {
	return m.conf.fee(0)
}

func (m *nativeMover) Move(ctx weave.Context, db weave.KVStore, queryID uint64, to weave.Address, amount uint64) (*PendingLeg, error) {
	if amount == 0 {
		return nil, nil
	}
	c, err := coin.FromNanos(amount, m.conf.NativeTicker)
	if err != nil {
		return nil, err
	}
	if err := m.cash.MoveCoins(db, m.account, to, c); err != nil {
		return nil, errors.Wrap(err, "native transfer")
	}
	return nil, nil
}

func (a TokenAsset) verify(db weave.ReadOnlyKVStore, env moverEnv) error {
	m, err := env.jetton.Minter(db, a.Master)
	if err != nil {
		return errors.Wrap(err, "token master")
	}
	if !bytes.Equal(a.WalletCode, m.WalletCode) {
		return errors.Wrap(errors.ErrInput, "wallet code does not match the token master")
	}
	return nil
}

func (a TokenAsset) newMover(env moverEnv, escrow weave.Condition, conf *Configuration) AssetMover {
	return &tokenMover{
		jetton:    env.jetton,
		scheduler: env.scheduler,
		escrow:    escrow,
		asset:     a,
		conf:      conf,
	}
}

type tokenMover struct {
	jetton    *jetton.Controller
	scheduler weave.Scheduler
	escrow    weave.Condition
	asset     TokenAsset
	conf      *Configuration
}

func (m *tokenMover) Custody(db weave.ReadOnlyKVStore) (uint64, error) {
	n, err := m.jetton.Balance(db, m.asset.Master, m.escrow.Address())
	if err != nil {
		return 0, errors.Wrap(err, "custody")
	}
	return n, nil
}

func (m *tokenMover) Fee() (coin.Coin, error) {
	return m.conf.fee(1)
}

// Move instructs the escrow wallet to transfer the tokens. The transfer is
// executed by the scheduler in the next block, authorized by the escrow
// condition. Excesses are reported back to the escrow.
func (m *tokenMover) Move(ctx weave.Context, db weave.KVStore, queryID uint64, to weave.Address, amount uint64) (*PendingLeg, error) {
	if amount == 0 {
		return nil, nil
	}
	now, ok := weave.BlockTime(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block time not present in context")
	}
	transfer := &jetton.TransferMsg{
		QueryID:             queryID,
		Master:              m.asset.Master,
		Owner:               m.escrow.Address(),
		Amount:              amount,
		Destination:         to,
		ResponseDestination: m.escrow.Address(),
	}
	if err := transfer.Validate(); err != nil {
		return nil, errors.Wrap(err, "token transfer")
	}
	if _, err := m.scheduler.Schedule(db, now, []weave.Condition{m.escrow}, transfer); err != nil {
		return nil, errors.Wrap(err, "schedule token transfer")
	}
	return &PendingLeg{
		QueryID:   queryID,
		Recipient: to,
		Amount:    amount,
	}, nil
}
