package jetton

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
)

const maxPayloadSize = 256

var _ weave.Msg = (*CreateMinterMsg)(nil)

// CreateMinterMsg creates a new token master.
type CreateMinterMsg struct {
	Admin      weave.Address `json:"admin"`
	Content    string        `json:"content"`
	WalletCode []byte        `json:"wallet_code"`
}

func (CreateMinterMsg) Path() string {
	return "jetton/create_minter"
}

func (m *CreateMinterMsg) Validate() error {
	mt := Minter{Admin: m.Admin, Content: m.Content, WalletCode: m.WalletCode}
	if err := mt.Validate(); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}

var _ weave.Msg = (*MintMsg)(nil)

// MintMsg issues new tokens to the recipient. It must be signed by the
// minter admin.
type MintMsg struct {
	Master    weave.Address `json:"master"`
	Recipient weave.Address `json:"recipient"`
	Amount    uint64        `json:"amount"`
}

func (MintMsg) Path() string {
	return "jetton/mint"
}

func (m *MintMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

var _ weave.Msg = (*TransferMsg)(nil)

// TransferMsg moves tokens from the wallet of the owner to the wallet of
// the destination. It must be authorized by the owner.
type TransferMsg struct {
	// QueryID correlates the transfer with its notification, excesses
	// and bounce.
	QueryID uint64        `json:"query_id"`
	Master  weave.Address `json:"master"`
	Owner   weave.Address `json:"owner"`
	Amount  uint64        `json:"amount"`
	// Destination is the owner of the receiving wallet.
	Destination weave.Address `json:"destination"`
	// ResponseDestination optionally receives an ExcessesMsg.
	ResponseDestination weave.Address `json:"response_destination,omitempty"`
	// ForwardAmount of native currency is sent together with the
	// transfer notification. No notification is sent when empty.
	ForwardAmount  *coin.Coin `json:"forward_amount,omitempty"`
	ForwardPayload []byte     `json:"forward_payload,omitempty"`
}

func (TransferMsg) Path() string {
	return "jetton/transfer"
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.ResponseDestination) != 0 {
		errs = errors.AppendField(errs, "ResponseDestination", m.ResponseDestination.Validate())
	}
	if !coin.IsEmpty(m.ForwardAmount) {
		errs = errors.AppendField(errs, "ForwardAmount", m.ForwardAmount.Validate())
		if !m.ForwardAmount.IsPositive() {
			errs = errors.AppendField(errs, "ForwardAmount", errors.Wrap(errors.ErrAmount, "must be positive"))
		}
	}
	if len(m.ForwardPayload) > maxPayloadSize {
		errs = errors.AppendField(errs, "ForwardPayload", errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

// BounceMsg returns the message reporting the failure of this transfer to
// its owner.
func (m *TransferMsg) BounceMsg(cause error) weave.Msg {
	return &TransferFailedMsg{
		QueryID: m.QueryID,
		Master:  m.Master,
		Owner:   m.Owner,
		Amount:  m.Amount,
		Reason:  cause.Error(),
	}
}

var _ weave.Msg = (*TransferNotificationMsg)(nil)

// TransferNotificationMsg informs the recipient about received tokens. It
// is authenticated by the wallet condition of the recipient.
type TransferNotificationMsg struct {
	QueryID   uint64        `json:"query_id"`
	Master    weave.Address `json:"master"`
	Amount    uint64        `json:"amount"`
	Sender    weave.Address `json:"sender"`
	Recipient weave.Address `json:"recipient"`
	// ForwardAmount is the native value that was sent to the recipient.
	ForwardAmount  *coin.Coin `json:"forward_amount,omitempty"`
	ForwardPayload []byte     `json:"forward_payload,omitempty"`
}

func (TransferNotificationMsg) Path() string {
	return "jetton/transfer_notification"
}

func (m *TransferNotificationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

var _ weave.Msg = (*ExcessesMsg)(nil)

// ExcessesMsg confirms a transfer to its response destination. It is
// authenticated by the wallet condition of the sender.
type ExcessesMsg struct {
	QueryID   uint64        `json:"query_id"`
	Master    weave.Address `json:"master"`
	Sender    weave.Address `json:"sender"`
	Recipient weave.Address `json:"recipient"`
}

func (ExcessesMsg) Path() string {
	return "jetton/excesses"
}

func (m *ExcessesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	return errs
}

var _ weave.Msg = (*TransferFailedMsg)(nil)

// TransferFailedMsg is the bounce of a transfer executed as a scheduled
// task. The tokens never left the wallet of the owner.
type TransferFailedMsg struct {
	QueryID uint64        `json:"query_id"`
	Master  weave.Address `json:"master"`
	Owner   weave.Address `json:"owner"`
	Amount  uint64        `json:"amount"`
	Reason  string        `json:"reason"`
}

func (TransferFailedMsg) Path() string {
	return "jetton/transfer_failed"
}

func (m *TransferFailedMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	return errs
}
