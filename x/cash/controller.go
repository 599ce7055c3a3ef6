package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to
	// the destination account. This operation is atomic.
	MoveCoins(store weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	// IssueCoins attempts to add the given amount of coins to the
	// destination address.
	IssueCoins(store weave.KVStore, dest weave.Address, amount coin.Coin) error
}

// Balancer is an interface to query the amount of coins.
type Balancer interface {
	// Balance returns the amount of funds stored under given account
	// address. Empty account has no coins.
	Balance(store weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and cash.Decorator.
// BaseController should work plenty fine, but you can add other logic if
// so desired.
type Controller interface {
	CoinMover
	CoinMinter
	Balancer
}

// BaseController is a simple implementation of controller. Wallet must
// return something that supports AddCoins and Subtract.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the coins held by the address.
func (c BaseController) Balance(store weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	s, err := c.bucket.GetOrCreate(store, addr)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get wallet")
	}
	return s.Coins, nil
}

// MoveCoins moves the given amount from src to dest. If src doesn't exist,
// or doesn't have sufficient coins, it fails.
func (c BaseController) MoveCoins(store weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := c.bucket.GetOrCreate(store, src)
	if err != nil {
		return errors.Wrap(err, "sender")
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "want %s, have %s", amount, sender.Coins.Get(amount.Ticker))
	}
	if err := sender.Subtract(amount); err != nil {
		return errors.Wrap(err, "subtract")
	}
	if err := c.bucket.Save(store, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}

	// Recipient is loaded after the sender is saved so that a transfer
	// to self is a no-op.
	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return errors.Wrap(err, "recipient")
	}
	if err := recipient.Add(amount); err != nil {
		return errors.Wrap(err, "add")
	}
	if err := c.bucket.Save(store, dest, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(store weave.KVStore, dest weave.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return errors.Wrap(err, "recipient")
	}
	if err := recipient.Add(amount); err != nil {
		return errors.Wrap(err, "add")
	}
	if !recipient.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "wallet cannot go negative")
	}
	return c.bucket.Save(store, dest, recipient)
}
