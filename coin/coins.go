package coin

import (
	"sort"
	"strings"

	"github.com/iov-one/escrowd/errors"
)

// Coins is a normalized set of coins: at most one coin per ticker, sorted
// by ticker, no zero values.
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins. It will sort
// them and combine duplicates to produce a normalized Coins set.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	var err error
	for _, c := range cs {
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Add returns a new set with the coin added. Coins with the same ticker are
// combined and zero values removed.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	res := make(Coins, 0, len(cs)+1)
	added := false
	for _, have := range cs {
		if have.SameType(c) {
			sum, err := have.Add(c)
			if err != nil {
				return nil, err
			}
			added = true
			if !sum.IsZero() {
				res = append(res, &sum)
			}
			continue
		}
		res = append(res, have.Clone())
	}
	if !added {
		res = append(res, c.Clone())
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Ticker < res[j].Ticker
	})
	return res, nil
}

// Subtract returns a new set with the coin removed. It does not check for
// negative values, use IsNonNegative.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Get returns the amount of coins with given ticker held in the set. Zero
// coin is returned when none is held.
func (cs Coins) Get(ticker string) Coin {
	for _, c := range cs {
		if c.Ticker == ticker {
			return *c
		}
	}
	return Coin{Ticker: ticker}
}

// Contains returns true if there is at least that much coin in the set.
func (cs Coins) Contains(c Coin) bool {
	return cs.Get(c.Ticker).Compare(c) >= 0
}

// IsNonNegative returns true if all coins are non negative.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

// IsEmpty returns true if there is no value in the set.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Validate requires that all coins are valid and the set is normalized.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrAmount, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrap(errors.ErrAmount, "zero coin")
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrCurrency, "not sorted or duplicate")
		}
	}
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
