package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
)

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
	maxRefSize  int = 64
)

var _ weave.Msg = (*SendMsg)(nil)

// SendMsg moves coins from the source to the destination wallet.
type SendMsg struct {
	Source      weave.Address `json:"source"`
	Destination weave.Address `json:"destination"`
	Amount      *coin.Coin    `json:"amount"`
	// Memo is a free text description.
	Memo string `json:"memo,omitempty"`
	// Ref is an optional binary reference.
	Ref []byte `json:"ref,omitempty"`
}

// Path returns the routing path for this message.
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible.
func (s *SendMsg) Validate() error {
	var errs error
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "non-positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", s.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", s.Source.Validate())
	errs = errors.AppendField(errs, "Destination", s.Destination.Validate())
	if len(s.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(s.Ref) > maxRefSize {
		errs = errors.AppendField(errs, "Ref", errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// UpdateConfigurationMsg patches the cash configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (*UpdateConfigurationMsg) Path() string {
	return "cash/update_configuration"
}

// Validate will skip any zero fields and validate the set ones.
func (m *UpdateConfigurationMsg) Validate() error {
	c := m.Patch
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	var errs error
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if len(c.CollectorAddress) != 0 {
		errs = errors.AppendField(errs, "CollectorAddress", c.CollectorAddress.Validate())
	}
	if !c.MinimalFee.IsZero() {
		errs = errors.AppendField(errs, "MinimalFee", c.MinimalFee.Validate())
		if !c.MinimalFee.IsNonNegative() {
			errs = errors.AppendField(errs, "MinimalFee", errors.Wrap(errors.ErrState, "cannot be negative"))
		}
	}
	return errs
}

// FeeInfo describes who pays the transaction fee and how much.
type FeeInfo struct {
	Payer weave.Address `json:"payer,omitempty"`
	Fees  *coin.Coin    `json:"fees"`
}

// FeeTx exposes information about the fees that should be paid.
type FeeTx interface {
	GetFees() *FeeInfo
}

// DefaultPayer makes sure there is a payer. If it was already set, returns
// f. If none was set, returns a new FeeInfo, with the New address set.
func (f *FeeInfo) DefaultPayer(addr weave.Address) *FeeInfo {
	if f == nil {
		return nil
	}
	if len(f.Payer) != 0 {
		return f
	}
	return &FeeInfo{
		Payer: addr,
		Fees:  f.Fees,
	}
}

// GetFees returns the fee amount or nil.
func (f *FeeInfo) GetFees() *coin.Coin {
	if f == nil {
		return nil
	}
	return f.Fees
}

// Validate makes sure that this is sensible. Note that fee must be
// present, even if 0.
func (f *FeeInfo) Validate() error {
	if f == nil {
		return errors.Wrap(errors.ErrInput, "nil fee info")
	}
	var errs error
	if f.Fees == nil {
		errs = errors.AppendField(errs, "Fees", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Fees", f.Fees.Validate())
		if !f.Fees.IsNonNegative() {
			errs = errors.AppendField(errs, "Fees", errors.Wrap(errors.ErrAmount, "negative"))
		}
	}
	return errors.AppendField(errs, "Payer", f.Payer.Validate())
}
