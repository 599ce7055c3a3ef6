package jetton

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"github.com/iov-one/escrowd/x/cash"
)

// Controller implements the token ledger. Other extensions use it to read
// balances and to transfer tokens they own.
type Controller struct {
	minters   orm.ModelBucket
	wallets   orm.ModelBucket
	seq       orm.Sequence
	mover     cash.CoinMover
	scheduler weave.Scheduler
}

// NewController returns a controller that moves forward amounts using the
// given mover and delivers notifications using the scheduler.
func NewController(mover cash.CoinMover, scheduler weave.Scheduler) *Controller {
	return &Controller{
		minters:   NewMinterBucket(),
		wallets:   NewWalletBucket(),
		seq:       orm.NewSequence("minter", "id"),
		mover:     mover,
		scheduler: scheduler,
	}
}

// CreateMinter stores a new token master and returns its address.
func (c *Controller) CreateMinter(db weave.KVStore, admin weave.Address, content string, walletCode []byte) (weave.Address, error) {
	id, err := c.seq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "minter sequence")
	}
	master := MinterCondition(id).Address()
	m := Minter{
		Admin:      admin,
		Content:    content,
		WalletCode: walletCode,
	}
	if _, err := c.minters.Put(db, master, &m); err != nil {
		return nil, errors.Wrap(err, "cannot store minter")
	}
	return master, nil
}

// Minter returns the token master stored under the given address.
func (c *Controller) Minter(db weave.ReadOnlyKVStore, master weave.Address) (*Minter, error) {
	var m Minter
	if err := c.minters.One(db, master, &m); err != nil {
		return nil, errors.Wrap(err, "minter")
	}
	return &m, nil
}

// Balance returns the amount of tokens held by the owner. An owner without
// a wallet holds nothing.
func (c *Controller) Balance(db weave.ReadOnlyKVStore, master, owner weave.Address) (uint64, error) {
	m, err := c.Minter(db, master)
	if err != nil {
		return 0, err
	}
	w, err := c.wallet(db, m, master, owner)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (c *Controller) wallet(db weave.ReadOnlyKVStore, m *Minter, master, owner weave.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.wallets.One(db, WalletAddress(master, owner, m.WalletCode), &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Owner: owner, Master: master}, nil
	default:
		return nil, errors.Wrap(err, "wallet")
	}
}

func (c *Controller) saveWallet(db weave.KVStore, m *Minter, w *Wallet) error {
	_, err := c.wallets.Put(db, WalletAddress(w.Master, w.Owner, m.WalletCode), w)
	return err
}

// Mint issues new tokens to the recipient wallet.
func (c *Controller) Mint(db weave.KVStore, master, recipient weave.Address, amount uint64) error {
	m, err := c.Minter(db, master)
	if err != nil {
		return err
	}
	if m.TotalSupply+amount < m.TotalSupply {
		return errors.Wrap(errors.ErrOverflow, "total supply")
	}
	m.TotalSupply += amount
	if _, err := c.minters.Put(db, master, m); err != nil {
		return errors.Wrap(err, "cannot store minter")
	}
	w, err := c.wallet(db, m, master, recipient)
	if err != nil {
		return err
	}
	w.Balance += amount
	return c.saveWallet(db, m, w)
}

// Transfer executes the transfer described by the message. Authorization
// of the owner must be checked by the caller. Notification and excesses
// are scheduled for the next block.
func (c *Controller) Transfer(ctx weave.Context, db weave.KVStore, msg *TransferMsg) error {
	m, err := c.Minter(db, msg.Master)
	if err != nil {
		return err
	}
	src, err := c.wallet(db, m, msg.Master, msg.Owner)
	if err != nil {
		return err
	}
	if src.Balance < msg.Amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", src.Balance, msg.Amount)
	}
	src.Balance -= msg.Amount
	if err := c.saveWallet(db, m, src); err != nil {
		return errors.Wrap(err, "save source wallet")
	}

	dst, err := c.wallet(db, m, msg.Master, msg.Destination)
	if err != nil {
		return err
	}
	if dst.Balance+msg.Amount < dst.Balance {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	dst.Balance += msg.Amount
	if err := c.saveWallet(db, m, dst); err != nil {
		return errors.Wrap(err, "save destination wallet")
	}

	now, ok := weave.BlockTime(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "block time not present in context")
	}

	if !coin.IsEmpty(msg.ForwardAmount) {
		if err := c.mover.MoveCoins(db, msg.Owner, msg.Destination, *msg.ForwardAmount); err != nil {
			return errors.Wrap(err, "forward amount")
		}
		notification := &TransferNotificationMsg{
			QueryID:        msg.QueryID,
			Master:         msg.Master,
			Amount:         msg.Amount,
			Sender:         msg.Owner,
			Recipient:      msg.Destination,
			ForwardAmount:  msg.ForwardAmount,
			ForwardPayload: msg.ForwardPayload,
		}
		auth := []weave.Condition{WalletCondition(msg.Master, msg.Destination, m.WalletCode)}
		if _, err := c.scheduler.Schedule(db, now, auth, notification); err != nil {
			return errors.Wrap(err, "schedule notification")
		}
	}

	if len(msg.ResponseDestination) != 0 {
		excesses := &ExcessesMsg{
			QueryID:   msg.QueryID,
			Master:    msg.Master,
			Sender:    msg.Owner,
			Recipient: msg.ResponseDestination,
		}
		auth := []weave.Condition{WalletCondition(msg.Master, msg.Owner, m.WalletCode)}
		if _, err := c.scheduler.Schedule(db, now, auth, excesses); err != nil {
			return errors.Wrap(err, "schedule excesses")
		}
	}
	return nil
}
