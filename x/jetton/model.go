package jetton

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"golang.org/x/crypto/sha3"
)

const (
	// ExtensionName is used for the conditions of this extension.
	ExtensionName = "jetton"

	maxContentSize    = 256
	maxWalletCodeSize = 64
)

// Minter is the token master. Only the admin can mint new tokens.
type Minter struct {
	Admin       weave.Address `json:"admin"`
	TotalSupply uint64        `json:"total_supply"`
	// Content is the token metadata, usually a link.
	Content string `json:"content"`
	// WalletCode identifies the wallet program. It is part of every
	// wallet address derivation.
	WalletCode []byte `json:"wallet_code"`
}

var _ orm.Model = (*Minter)(nil)

func (m *Minter) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *Minter) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *Minter) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if len(m.Content) > maxContentSize {
		errs = errors.AppendField(errs, "Content", errors.Wrap(errors.ErrInput, "too long"))
	}
	if n := len(m.WalletCode); n == 0 || n > maxWalletCodeSize {
		errs = errors.AppendField(errs, "WalletCode", errors.Wrapf(errors.ErrInput, "must be 1 to %d bytes", maxWalletCodeSize))
	}
	return errs
}

// Wallet holds the balance of a single owner for a single token.
type Wallet struct {
	Owner   weave.Address `json:"owner"`
	Master  weave.Address `json:"master"`
	Balance uint64        `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(w)
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, w)
}

func (w *Wallet) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", w.Owner.Validate())
	errs = errors.AppendField(errs, "Master", w.Master.Validate())
	return errs
}

// MinterCondition returns the condition of the minter with the given
// sequence id. The address of this condition is the master address.
func MinterCondition(id []byte) weave.Condition {
	return weave.NewCondition(ExtensionName, "minter", id)
}

// WalletCondition returns the condition controlled by the wallet of the
// owner. Notifications and excesses sent by this wallet are authenticated
// with it.
func WalletCondition(master, owner weave.Address, walletCode []byte) weave.Condition {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(master)
	_, _ = h.Write(owner)
	_, _ = h.Write(walletCode)
	return weave.NewCondition(ExtensionName, "wallet", h.Sum(nil))
}

// WalletAddress returns the address of the wallet holding the tokens of
// the owner.
func WalletAddress(master, owner weave.Address, walletCode []byte) weave.Address {
	return WalletCondition(master, owner, walletCode).Address()
}

// NewMinterBucket returns a bucket storing minters under their master
// address.
func NewMinterBucket() orm.ModelBucket {
	return orm.NewModelBucket("minter", &Minter{})
}

// NewWalletBucket returns a bucket storing wallets under their wallet
// address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket("jwallet", &Wallet{})
}

// RegisterQuery registers the minters under /minters and wallets under
// /jettonwallets.
func RegisterQuery(qr weave.QueryRouter) {
	NewMinterBucket().Register("minters", qr)
	NewWalletBucket().Register("jettonwallets", qr)
}
