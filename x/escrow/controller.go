package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/jetton"
)

// Controller gives access to escrows and implements their settlement.
// Authorization is checked by the handlers.
type Controller struct {
	bucket orm.ModelBucket
	env    moverEnv
}

// NewController returns a controller using the cash ledger for native
// deals and the jetton ledger for token deals. Token transfers are
// dispatched through the scheduler.
func NewController(cashctrl cash.Controller, jettons *jetton.Controller, scheduler weave.Scheduler) *Controller {
	return &Controller{
		bucket: NewBucket(),
		env: moverEnv{
			cash:      cashctrl,
			jetton:    jettons,
			scheduler: scheduler,
		},
	}
}

// Escrow returns the escrow with the given id.
func (c *Controller) Escrow(db weave.ReadOnlyKVStore, id []byte) (*Escrow, error) {
	var e Escrow
	if err := c.bucket.One(db, id, &e); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	return &e, nil
}

// ByAddress returns the id and the escrow owning the given address.
func (c *Controller) ByAddress(db weave.ReadOnlyKVStore, addr weave.Address) ([]byte, *Escrow, error) {
	var e Escrow
	id, err := c.bucket.ByIndex(db, "address", addr, &e)
	if err != nil {
		return nil, nil, errors.Wrap(err, "escrow")
	}
	return id, &e, nil
}

func (c *Controller) save(db weave.KVStore, id []byte, e *Escrow) error {
	if _, err := c.bucket.Put(db, id, e); err != nil {
		return errors.Wrap(err, "cannot store escrow")
	}
	return nil
}

// Mover returns the mover of the asset held by the escrow.
func (c *Controller) Mover(id []byte, e *Escrow, conf *Configuration) AssetMover {
	return e.Config.Asset.newMover(c.env, Condition(id), conf)
}

// Deploy creates the escrow described by the configuration, unless it
// already exists. The value is deposited into the escrow address.
func (c *Controller) Deploy(db weave.KVStore, payer weave.Address, config DealConfig, value *coin.Coin) ([]byte, *Escrow, error) {
	if err := config.Asset.verify(db, c.env); err != nil {
		return nil, nil, err
	}
	id, err := config.ID()
	if err != nil {
		return nil, nil, err
	}
	e, err := c.Escrow(db, id)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		e = &Escrow{
			Config:  config,
			Address: Condition(id).Address(),
		}
		if err := c.save(db, id, e); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}
	if !coin.IsEmpty(value) {
		if err := c.env.cash.MoveCoins(db, payer, e.Address, *value); err != nil {
			return nil, nil, errors.Wrap(err, "deposit")
		}
	}
	return id, e, nil
}

// Settle moves the price to the recipient and completes the escrow. The
// escrow must hold at least the full price.
func (c *Controller) Settle(ctx weave.Context, db weave.KVStore, id []byte, e *Escrow, to weave.Address, queryID uint64, value *coin.Coin) error {
	if e.IsCompleted {
		return errors.Wrap(ErrAlreadyCompleted, "cannot settle twice")
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	mover := c.Mover(id, e, conf)
	custody, err := mover.Custody(db)
	if err != nil {
		return err
	}
	full, err := e.Config.FullPrice()
	if err != nil {
		return err
	}
	if custody < full {
		return errors.Wrapf(errors.ErrInsufficientAmount, "custody %d, full price %d", custody, full)
	}
	if err := c.chargeFee(db, conf, mover, e.Config.Guarantor, value); err != nil {
		return err
	}
	leg, err := mover.Move(ctx, db, queryID, to, e.Config.Price)
	if err != nil {
		return err
	}
	e.IsCompleted = true
	e.PendingLeg = leg
	return c.save(db, id, e)
}

// Collect sends the remaining custody and any native leftovers to the
// guarantor and deletes the escrow. It returns the amount of the deal
// asset that was swept.
func (c *Controller) Collect(ctx weave.Context, db weave.KVStore, id []byte, e *Escrow, queryID uint64, value *coin.Coin) (uint64, error) {
	if !e.IsCompleted {
		return 0, errors.Wrap(ErrNotCompleted, "neither approved nor refunded")
	}
	if leg := e.PendingLeg; leg != nil {
		if leg.Bounced {
			return 0, errors.Wrapf(errors.ErrState, "transfer %d bounced", leg.QueryID)
		}
		return 0, errors.Wrapf(errors.ErrState, "transfer %d pending", leg.QueryID)
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	mover := c.Mover(id, e, conf)
	if err := c.chargeFee(db, conf, mover, e.Config.Guarantor, value); err != nil {
		return 0, err
	}
	residual, err := mover.Custody(db)
	if err != nil {
		return 0, err
	}
	if _, err := mover.Move(ctx, db, queryID, e.Config.Guarantor, residual); err != nil {
		return 0, err
	}
	if err := c.sweep(db, e.Address, e.Config.Guarantor); err != nil {
		return 0, err
	}
	if err := c.bucket.Delete(db, id); err != nil {
		return 0, errors.Wrap(err, "cannot delete escrow")
	}
	return residual, nil
}

// Retry dispatches a bounced transfer again.
func (c *Controller) Retry(ctx weave.Context, db weave.KVStore, id []byte, e *Escrow, queryID uint64, value *coin.Coin) error {
	leg := e.PendingLeg
	if leg == nil || !leg.Bounced {
		return errors.Wrap(errors.ErrState, "no bounced transfer")
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	mover := c.Mover(id, e, conf)
	if err := c.chargeFee(db, conf, mover, e.Config.Guarantor, value); err != nil {
		return err
	}
	next, err := mover.Move(ctx, db, queryID, leg.Recipient, leg.Amount)
	if err != nil {
		return err
	}
	e.PendingLeg = next
	return c.save(db, id, e)
}

// chargeFee pays the transfer fee from the payer to the collector. The
// value is the most the payer agreed to pay.
func (c *Controller) chargeFee(db weave.KVStore, conf *Configuration, mover AssetMover, payer weave.Address, value *coin.Coin) error {
	fee, err := mover.Fee()
	if err != nil {
		return err
	}
	if !fee.IsPositive() {
		return nil
	}
	if coin.IsEmpty(value) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "fee %s not paid", fee)
	}
	if !value.SameType(fee) {
		return errors.Wrapf(errors.ErrCurrency, "fee must be paid in %s", fee.Ticker)
	}
	if !value.IsGTE(fee) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "value %s, fee %s", value, fee)
	}
	if err := c.env.cash.MoveCoins(db, payer, conf.Collector, fee); err != nil {
		return errors.Wrap(err, "fee")
	}
	return nil
}

// sweep moves all coins of the account to the destination.
func (c *Controller) sweep(db weave.KVStore, from, to weave.Address) error {
	coins, err := c.env.cash.Balance(db, from)
	if err != nil {
		return err
	}
	for _, amount := range coins {
		if !amount.IsPositive() {
			continue
		}
		if err := c.env.cash.MoveCoins(db, from, to, *amount); err != nil {
			return errors.Wrap(err, "sweep")
		}
	}
	return nil
}

// Getters is the read only view of an escrow.
type Getters struct {
	Price        uint64        `json:"price"`
	FullPrice    uint64        `json:"full_price"`
	JettonMaster weave.Address `json:"jetton_master,omitempty"`
	IsCompleted  bool          `json:"is_completed"`
}

func (g *Getters) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(g)
}

func (g *Getters) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, g)
}

// Getters returns the view of the escrow with the given id.
func (c *Controller) Getters(db weave.ReadOnlyKVStore, id []byte) (*Getters, error) {
	e, err := c.Escrow(db, id)
	if err != nil {
		return nil, err
	}
	full, err := e.Config.FullPrice()
	if err != nil {
		return nil, err
	}
	return &Getters{
		Price:        e.Config.Price,
		FullPrice:    full,
		JettonMaster: e.Config.Asset.JettonMaster(),
		IsCompleted:  e.IsCompleted,
	}, nil
}

// Price returns the amount the seller receives on approval.
func (c *Controller) Price(db weave.ReadOnlyKVStore, id []byte) (uint64, error) {
	g, err := c.Getters(db, id)
	if err != nil {
		return 0, err
	}
	return g.Price, nil
}

// FullPrice returns the amount the escrow must hold to be settled.
func (c *Controller) FullPrice(db weave.ReadOnlyKVStore, id []byte) (uint64, error) {
	g, err := c.Getters(db, id)
	if err != nil {
		return 0, err
	}
	return g.FullPrice, nil
}

// JettonMaster returns the token master of a token deal or nil.
func (c *Controller) JettonMaster(db weave.ReadOnlyKVStore, id []byte) (weave.Address, error) {
	g, err := c.Getters(db, id)
	if err != nil {
		return nil, err
	}
	return g.JettonMaster, nil
}

func (c *Controller) IsCompleted(db weave.ReadOnlyKVStore, id []byte) (bool, error) {
	g, err := c.Getters(db, id)
	if err != nil {
		return false, err
	}
	return g.IsCompleted, nil
}
