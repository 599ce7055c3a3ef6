package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/crypto"
	"github.com/iov-one/escrowd/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// AppStateKey is the key in the genesis file holding the application
	// state.
	AppStateKey = "app_state"

	flagIgnore = "i"
)

// GenOptions can parse command line arguments to generate the default
// app_state for the genesis file. This is application specific.
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't want to
// parse, so we just grab it into a raw object format, so we can add one
// line.
type GenesisDoc map[string]json.RawMessage

// GenerateCoinKey returns the address of a new random account together with
// the hex encoded master seed it was derived from. You can give coins to
// this address and hand the seed to the user to access them.
func GenerateCoinKey() (weave.Address, string, error) {
	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return nil, "", errors.Wrap(err, "cannot read random seed")
	}
	key, err := crypto.DeriveAccount(seed, 0)
	if err != nil {
		return nil, "", err
	}
	return key.PublicKey().Address(), hex.EncodeToString(seed), nil
}

// InitCmd adds the app state generated by gen to the genesis file created
// by `tendermint init` under the home directory. An existing app state is
// kept unless the -i flag is given.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	ignore := fs.Bool(flagIgnore, false, "overwrite an existing app_state")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	if _, err := os.Stat(genFile); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "genesis file %s: run tendermint init first", genFile)
	}

	options, err := gen(fs.Args())
	if err != nil {
		return err
	}
	if err := addGenesisOptions(genFile, options, *ignore); err != nil {
		return err
	}
	logger.Info("App state initialized", "path", genFile)
	return nil
}

func addGenesisOptions(filename string, options json.RawMessage, overwrite bool) error {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "cannot read genesis file")
	}

	var doc GenesisDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse genesis file: %s", err)
	}
	if state, ok := doc[AppStateKey]; ok && len(state) > 0 && string(state) != "null" && !overwrite {
		return errors.Wrap(errors.ErrState, "app_state already set, use -i to overwrite")
	}
	doc[AppStateKey] = options

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize genesis")
	}
	return ioutil.WriteFile(filename, out, 0600)
}
