package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
)

var _ weave.Msg = (*CreateMsg)(nil)

// CreateMsg deploys an escrow. Deploying a configuration that already has
// an escrow deposits the value into the existing one.
type CreateMsg struct {
	Config DealConfig `json:"config"`
	// Value is moved from the main signer to the escrow address.
	Value *coin.Coin `json:"value,omitempty"`
}

func (CreateMsg) Path() string {
	return "escrow/create"
}

func (m *CreateMsg) Validate() error {
	if err := m.Config.Validate(); err != nil {
		return err
	}
	return validValue(m.Value)
}

var _ weave.Msg = (*ApproveMsg)(nil)

// ApproveMsg releases the price to the seller.
type ApproveMsg struct {
	EscrowID []byte `json:"escrow_id"`
	QueryID  uint64 `json:"query_id"`
	// Value is the most the guarantor agrees to pay in fees.
	Value *coin.Coin `json:"value,omitempty"`
}

func (ApproveMsg) Path() string {
	return "escrow/approve"
}

func (m *ApproveMsg) Validate() error {
	return validAction(m.EscrowID, m.Value)
}

var _ weave.Msg = (*RefundMsg)(nil)

// RefundMsg returns the price to the buyer.
type RefundMsg struct {
	EscrowID []byte     `json:"escrow_id"`
	QueryID  uint64     `json:"query_id"`
	Value    *coin.Coin `json:"value,omitempty"`
}

func (RefundMsg) Path() string {
	return "escrow/refund"
}

func (m *RefundMsg) Validate() error {
	return validAction(m.EscrowID, m.Value)
}

var _ weave.Msg = (*CollectRoyaltiesMsg)(nil)

// CollectRoyaltiesMsg sends whatever remains in custody to the guarantor
// and destroys a completed escrow.
type CollectRoyaltiesMsg struct {
	EscrowID []byte     `json:"escrow_id"`
	QueryID  uint64     `json:"query_id"`
	Value    *coin.Coin `json:"value,omitempty"`
}

func (CollectRoyaltiesMsg) Path() string {
	return "escrow/collect_royalties"
}

func (m *CollectRoyaltiesMsg) Validate() error {
	return validAction(m.EscrowID, m.Value)
}

var _ weave.Msg = (*RetryTransferMsg)(nil)

// RetryTransferMsg dispatches a bounced token transfer again, using a new
// query id.
type RetryTransferMsg struct {
	EscrowID []byte     `json:"escrow_id"`
	QueryID  uint64     `json:"query_id"`
	Value    *coin.Coin `json:"value,omitempty"`
}

func (RetryTransferMsg) Path() string {
	return "escrow/retry_transfer"
}

func (m *RetryTransferMsg) Validate() error {
	return validAction(m.EscrowID, m.Value)
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// UpdateConfigurationMsg patches the escrow configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (*UpdateConfigurationMsg) Path() string {
	return "escrow/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrMsg, "patch is required")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if len(m.Patch.Collector) != 0 {
		if err := m.Patch.Collector.Validate(); err != nil {
			return errors.Wrap(err, "collector")
		}
	}
	if m.Patch.NativeTicker != "" && !coin.IsCC(m.Patch.NativeTicker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Patch.NativeTicker)
	}
	return nil
}

func validAction(id []byte, value *coin.Coin) error {
	var errs error
	if len(id) != idLength {
		errs = errors.AppendField(errs, "EscrowID", errors.Wrapf(errors.ErrInput, "must be %d bytes", idLength))
	}
	errs = errors.AppendField(errs, "Value", validValue(value))
	return errs
}

func validValue(value *coin.Coin) error {
	if coin.IsEmpty(value) {
		return nil
	}
	if err := value.Validate(); err != nil {
		return err
	}
	if !value.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	return nil
}
