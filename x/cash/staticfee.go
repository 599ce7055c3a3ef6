package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x"
)

// FeeDecorator ensures that the fee can be deducted from the account. All
// deducted fees are send to the collector configured via gconf.
//
// If the configured minimal fee is zero, no fees are required. If a
// currency is set on minimal fee, then all fees must be paid in that
// currency.
type FeeDecorator struct {
	auth x.Authenticator
	ctrl CoinMover
}

var _ weave.Decorator = FeeDecorator{}

// NewFeeDecorator returns a FeeDecorator that moves fees using the given
// controller.
func NewFeeDecorator(auth x.Authenticator, ctrl CoinMover) FeeDecorator {
	return FeeDecorator{
		auth: auth,
		ctrl: ctrl,
	}
}

// Check verifies and deducts fees before calling down the stack.
func (d FeeDecorator) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	paid, err := d.chargeFee(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += paid
	return res, nil
}

// Deliver verifies and deducts fees before calling down the stack.
func (d FeeDecorator) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if _, err := d.chargeFee(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

// chargeFee moves the fee declared by the transaction to the collector and
// returns the transaction priority.
func (d FeeDecorator) chargeFee(ctx weave.Context, store weave.KVStore, tx weave.Tx) (int64, error) {
	conf, err := loadConf(store)
	if err != nil {
		return 0, err
	}
	finfo, err := d.extractFee(ctx, tx, conf)
	if err != nil {
		return 0, err
	}
	fee := finfo.GetFees()
	if coin.IsEmpty(fee) {
		return 0, nil
	}
	if !d.auth.HasAddress(ctx, finfo.Payer) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "fee payer signature missing")
	}
	if err := d.ctrl.MoveCoins(store, finfo.Payer, conf.CollectorAddress, *fee); err != nil {
		return 0, errors.Wrap(err, "cannot pay the fee")
	}
	return toPayment(*fee), nil
}

func (d FeeDecorator) extractFee(ctx weave.Context, tx weave.Tx, conf *Configuration) (*FeeInfo, error) {
	var finfo *FeeInfo
	if ftx, ok := tx.(FeeTx); ok {
		var payer weave.Address
		if signer := x.MainSigner(ctx, d.auth); signer != nil {
			payer = signer.Address()
		}
		finfo = ftx.GetFees().DefaultPayer(payer)
	}

	fee := finfo.GetFees()
	if coin.IsEmpty(fee) {
		if conf.MinimalFee.IsZero() {
			return finfo, nil
		}
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "minimal fee is %s", conf.MinimalFee)
	}
	if err := finfo.Validate(); err != nil {
		return nil, errors.Wrap(err, "fee info")
	}

	if conf.MinimalFee.IsZero() {
		return finfo, nil
	}
	if conf.MinimalFee.Ticker == "" {
		return nil, errors.Wrap(errors.ErrCurrency, "no ticker")
	}
	if !fee.SameType(conf.MinimalFee) {
		return nil, errors.Wrapf(errors.ErrCurrency, "%s vs fee %s", conf.MinimalFee.Ticker, fee.Ticker)
	}
	if !fee.IsGTE(conf.MinimalFee) {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "minimal fee is %s", conf.MinimalFee)
	}
	return finfo, nil
}

// toPayment calculates how much we prioritize the tx: one point per
// fractional unit.
func toPayment(fee coin.Coin) int64 {
	return fee.Whole*coin.FracUnit + fee.Fractional
}
