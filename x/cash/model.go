package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
)

// BucketName is where we store the balances.
const BucketName = "cash"

// Set is the content of a wallet: a normalized set of coins.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Set) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

// Validate requires that all coins are valid and sorted.
func (s *Set) Validate() error {
	if err := s.Coins.Validate(); err != nil {
		return err
	}
	if !s.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	return nil
}

// Add modifies the set to include the given coin.
func (s *Set) Add(c coin.Coin) error {
	cs, err := s.Coins.Add(c)
	if err != nil {
		return err
	}
	s.Coins = cs
	return nil
}

// Subtract modifies the set to remove the given coin.
func (s *Set) Subtract(c coin.Coin) error {
	return s.Add(c.Negative())
}

// Bucket is a type-safe wrapper around orm.ModelBucket, storing wallets by
// their address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Set{}),
	}
}

// GetOrCreate returns the wallet of the given address, or an empty one
// if it does not exist yet.
func (b Bucket) GetOrCreate(db weave.ReadOnlyKVStore, key weave.Address) (*Set, error) {
	var s Set
	switch err := b.One(db, key, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &Set{}, nil
	default:
		return nil, err
	}
}

// Save stores the wallet. Empty wallets are removed from the database.
func (b Bucket) Save(db weave.KVStore, key weave.Address, s *Set) error {
	if s.Coins.IsEmpty() {
		switch err := b.Delete(db, key); {
		case err == nil, errors.ErrNotFound.Is(err):
			return nil
		default:
			return err
		}
	}
	_, err := b.Put(db, key, s)
	return err
}
