package escrow

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/escrowd/errors"
)

// Royalty returns floor(price * num / den). The product is computed on 256
// bits so it cannot overflow, but the result must fit 64 bits.
func Royalty(price, num, den uint64) (uint64, error) {
	if den == 0 {
		return 0, errors.Wrap(errors.ErrInput, "zero royalty denominator")
	}
	r, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(price),
		uint256.NewInt(num),
		uint256.NewInt(den),
	)
	if overflow || !r.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "royalty of %d at %d/%d", price, num, den)
	}
	return r.Uint64(), nil
}

// FullPrice returns the amount the escrow must hold before it can be
// settled: the price increased by the royalty.
func FullPrice(price, num, den uint64) (uint64, error) {
	royalty, err := Royalty(price, num, den)
	if err != nil {
		return 0, err
	}
	full := price + royalty
	if full < price {
		return 0, errors.Wrapf(errors.ErrOverflow, "full price of %d", price)
	}
	return full, nil
}
