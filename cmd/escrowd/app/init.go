package app

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/commands/server"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
)

// DefaultTicker is the native currency used when none is given.
const DefaultTicker = "TON"

type dict map[string]interface{}

// GenInitOptions produces the app state for a development chain: one rich
// account that owns the configuration and collects all fees.
//
// Arguments are an optional ticker and an optional owner address. Without
// an address a new key is generated and its seed printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := DefaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
		}
	}

	var owner weave.Address
	if len(args) > 1 {
		var err error
		if owner, err = weave.ParseAddress(args[1]); err != nil {
			return nil, errors.Wrap(err, "owner address")
		}
	} else {
		addr, seed, err := server.GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		owner = addr
		fmt.Printf("Owner account seed: %s\n", seed)
	}
	return GenesisState(owner, ticker)
}

// GenesisState returns the app state funding the owner with a million coins
// of the native currency and making it the owner and fee collector of the
// cash and escrow configurations.
func GenesisState(owner weave.Address, ticker string) (json.RawMessage, error) {
	state := dict{
		"cash": []cash.GenesisAccount{
			{
				Address: owner,
				Set:     cash.Set{Coins: coin.Coins{coin.NewCoinp(1000000, 0, ticker)}},
			},
		},
		"jetton": []interface{}{},
		"escrow": []interface{}{},
		"conf": dict{
			"cash": cash.Configuration{
				Owner:            owner,
				CollectorAddress: owner,
				MinimalFee:       coin.NewCoin(0, 0, ticker),
			},
			"escrow": escrow.Configuration{
				Owner:         owner,
				Collector:     owner,
				NativeTicker:  ticker,
				ProcessingFee: coin.NewCoin(0, 10000000, ticker),
				ForwardFee:    coin.NewCoin(0, 50000000, ticker),
			},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize app state")
	}
	return raw, nil
}
