package crypto

import (
	"fmt"

	"github.com/iov-one/escrowd/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// CoinType is the BIP-44 coin type used for account derivation.
const CoinType = 234

// AccountPath returns the hardened derivation path of the n-th account.
func AccountPath(n uint32) string {
	return fmt.Sprintf("m/44'/%d'/%d'", CoinType, n)
}

// DeriveKey derives the private key found under the given path of the
// master seed.
func DeriveKey(seed []byte, path string) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key)
}

// DeriveAccount derives the n-th account key of the master seed.
func DeriveAccount(seed []byte, n uint32) (*PrivateKey, error) {
	return DeriveKey(seed, AccountPath(n))
}
