package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"github.com/iov-one/escrowd/x/jetton"
	"golang.org/x/crypto/sha3"
)

const (
	// ExtensionName is used for the conditions of this extension.
	ExtensionName = "escrow"

	idLength = 32
)

// AssetKind is the asset a deal is paid with. It is either NativeAsset or
// TokenAsset.
type AssetKind interface {
	Validate() error
	// JettonMaster returns the token master address or nil for the native
	// currency.
	JettonMaster() weave.Address
	// JettonWallet returns the address of the token wallet of the owner
	// or nil for the native currency.
	JettonWallet(owner weave.Address) weave.Address
	// verify checks the asset against the ledger.
	verify(db weave.ReadOnlyKVStore, env moverEnv) error
	// newMover returns the mover of the asset held by the escrow account
	// of the given condition.
	newMover(env moverEnv, escrow weave.Condition, conf *Configuration) AssetMover
}

// NativeAsset is the native currency of the chain. Its ticker is part of
// the configuration.
type NativeAsset struct{}

var _ AssetKind = NativeAsset{}

func (NativeAsset) Validate() error {
	return nil
}

func (NativeAsset) JettonMaster() weave.Address {
	return nil
}

func (NativeAsset) JettonWallet(weave.Address) weave.Address {
	return nil
}

// TokenAsset is a jetton token. The escrow holds it in its own wallet,
// derived from the escrow address, the master and the wallet code.
type TokenAsset struct {
	Master     weave.Address `json:"master"`
	WalletCode []byte        `json:"wallet_code"`
}

var _ AssetKind = TokenAsset{}

func (a TokenAsset) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Master", a.Master.Validate())
	if len(a.WalletCode) == 0 {
		errs = errors.AppendField(errs, "WalletCode", errors.ErrEmpty)
	}
	return errs
}

func (a TokenAsset) JettonMaster() weave.Address {
	return a.Master
}

func (a TokenAsset) JettonWallet(owner weave.Address) weave.Address {
	return jetton.WalletAddress(a.Master, owner, a.WalletCode)
}

// DealConfig is the immutable description of a deal. The escrow id is
// derived from it.
type DealConfig struct {
	// Price is what the seller receives on approval.
	Price              uint64        `json:"price"`
	Asset              AssetKind     `json:"asset"`
	RoyaltyNumerator   uint64        `json:"royalty_numerator"`
	RoyaltyDenominator uint64        `json:"royalty_denominator"`
	Seller             weave.Address `json:"seller"`
	Buyer              weave.Address `json:"buyer"`
	Guarantor          weave.Address `json:"guarantor"`
}

func (c *DealConfig) Validate() error {
	var errs error
	if c.Price == 0 {
		errs = errors.AppendField(errs, "Price", errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if c.Asset == nil {
		errs = errors.AppendField(errs, "Asset", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Asset", c.Asset.Validate())
	}
	if c.RoyaltyDenominator == 0 {
		errs = errors.AppendField(errs, "RoyaltyDenominator", errors.Wrap(errors.ErrInput, "must not be zero"))
	} else if _, err := c.FullPrice(); err != nil {
		errs = errors.AppendField(errs, "RoyaltyNumerator", err)
	}
	errs = errors.AppendField(errs, "Seller", c.Seller.Validate())
	errs = errors.AppendField(errs, "Buyer", c.Buyer.Validate())
	errs = errors.AppendField(errs, "Guarantor", c.Guarantor.Validate())
	if c.Seller.Equals(c.Buyer) || c.Seller.Equals(c.Guarantor) || c.Buyer.Equals(c.Guarantor) {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "seller, buyer and guarantor must be distinct"))
	}
	return errs
}

// Royalty returns the part of the full price collected by the guarantor.
func (c *DealConfig) Royalty() (uint64, error) {
	return Royalty(c.Price, c.RoyaltyNumerator, c.RoyaltyDenominator)
}

// FullPrice returns the amount the escrow must hold to be settled.
func (c *DealConfig) FullPrice() (uint64, error) {
	return FullPrice(c.Price, c.RoyaltyNumerator, c.RoyaltyDenominator)
}

// ID returns the keccak256 hash of the serialized configuration. Deploying
// the same configuration twice always yields the same escrow.
func (c *DealConfig) ID() ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(raw)
	return h.Sum(nil), nil
}

// PendingLeg is a token transfer dispatched by the escrow that was not yet
// confirmed.
type PendingLeg struct {
	QueryID   uint64        `json:"query_id"`
	Recipient weave.Address `json:"recipient"`
	Amount    uint64        `json:"amount"`
	// Bounced is set when the transfer failed. A bounced leg must be
	// retried before royalties can be collected.
	Bounced bool `json:"bounced,omitempty"`
}

// Escrow is the state of a single deal.
type Escrow struct {
	Config DealConfig `json:"config"`
	// Address holds the native custody and owns the token wallet.
	Address     weave.Address `json:"address"`
	IsCompleted bool          `json:"is_completed"`
	PendingLeg  *PendingLeg   `json:"pending_leg,omitempty"`
}

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(e)
}

func (e *Escrow) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, e)
}

func (e *Escrow) Validate() error {
	if err := e.Config.Validate(); err != nil {
		return err
	}
	if err := e.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if e.PendingLeg != nil && !e.IsCompleted {
		return errors.Wrap(errors.ErrState, "pending leg before completion")
	}
	return nil
}

// Condition returns the condition controlled by the escrow with the given
// id. Its address holds the escrow custody.
func Condition(id []byte) weave.Condition {
	return weave.NewCondition(ExtensionName, "deal", id)
}

func escrowAddress(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e.Address, nil
}

// NewBucket returns a bucket storing escrows under their id, indexed by
// their address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("escrow", &Escrow{},
		orm.WithUniqueIndex("address", escrowAddress),
	)
}
