package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
)

const confPkg = "escrow"

// Configuration is the escrow extension configuration, kept in gconf.
type Configuration struct {
	// Owner is allowed to update the configuration.
	Owner weave.Address `json:"owner"`
	// Collector receives the processing and forward fees.
	Collector weave.Address `json:"collector"`
	// NativeTicker is the currency of native deals and of all fees.
	NativeTicker string `json:"native_ticker"`
	// ProcessingFee is paid by every settlement and collection.
	ProcessingFee coin.Coin `json:"processing_fee"`
	// ForwardFee is paid additionally for every token transfer.
	ForwardFee coin.Coin `json:"forward_fee"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	errs = errors.AppendField(errs, "Collector", c.Collector.Validate())
	if !coin.IsCC(c.NativeTicker) {
		errs = errors.AppendField(errs, "NativeTicker", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", c.NativeTicker))
	}
	errs = errors.AppendField(errs, "ProcessingFee", c.validFee(c.ProcessingFee))
	errs = errors.AppendField(errs, "ForwardFee", c.validFee(c.ForwardFee))
	return errs
}

func (c *Configuration) validFee(fee coin.Coin) error {
	if fee.IsZero() {
		return nil
	}
	if err := fee.Validate(); err != nil {
		return err
	}
	if !fee.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative fee")
	}
	if fee.Ticker != c.NativeTicker {
		return errors.Wrapf(errors.ErrCurrency, "fee must be paid in %s", c.NativeTicker)
	}
	return nil
}

// fee returns the processing fee increased by the forward fee of the given
// number of token transfers.
func (c *Configuration) fee(forwards int) (coin.Coin, error) {
	total := coin.NewCoin(0, 0, c.NativeTicker)
	total, err := total.Add(c.ProcessingFee)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "processing fee")
	}
	for i := 0; i < forwards; i++ {
		if total, err = total.Add(c.ForwardFee); err != nil {
			return coin.Coin{}, errors.Wrap(err, "forward fee")
		}
	}
	return total, nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
