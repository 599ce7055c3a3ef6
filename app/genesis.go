package app

import (
	"github.com/iov-one/escrowd"
)

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...weave.Initializer) weave.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []weave.Initializer
}

// FromGenesis passes the options to every initializer in order and aborts
// at the first failure.
func (c chainInitializer) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
