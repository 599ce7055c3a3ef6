package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func newHome(t *testing.T, genesis string) (home string, cleanup func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "escrowd_init")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0700))
	if genesis != "" {
		path := filepath.Join(home, "config", "genesis.json")
		require.NoError(t, ioutil.WriteFile(path, []byte(genesis), 0600))
	}
	return home, func() { os.RemoveAll(home) }
}

func readAppState(t *testing.T, home string) weave.Options {
	t.Helper()
	raw, err := ioutil.ReadFile(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	var doc struct {
		ChainID  string        `json:"chain_id"`
		AppState weave.Options `json:"app_state"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "escrow-test", doc.ChainID)
	return doc.AppState
}

func TestInitCmd(t *testing.T) {
	home, cleanup := newHome(t, `{"chain_id": "escrow-test", "validators": []}`)
	defer cleanup()

	var seen []string
	gen := func(args []string) (json.RawMessage, error) {
		seen = args
		return json.RawMessage(`{"escrow": [], "conf": {"escrow": {"native_ticker": "TON"}}}`), nil
	}
	logger := log.NewNopLogger()

	require.NoError(t, InitCmd(gen, logger, home, []string{"TON"}))
	assert.Equal(t, []string{"TON"}, seen)
	state := readAppState(t, home)
	assert.Contains(t, state, "escrow")
	assert.Contains(t, state, "conf")

	err := InitCmd(gen, logger, home, nil)
	assert.True(t, errors.ErrState.Is(err), "app state must not be silently replaced: %v", err)

	require.NoError(t, InitCmd(gen, logger, home, []string{"-i", "TON"}))
	assert.Equal(t, []string{"TON"}, seen)
}

func TestInitCmdWithoutGenesis(t *testing.T) {
	home, cleanup := newHome(t, "")
	defer cleanup()

	gen := func([]string) (json.RawMessage, error) { return json.RawMessage(`{}`), nil }
	err := InitCmd(gen, log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestGenerateCoinKey(t *testing.T) {
	addr, seed, err := GenerateCoinKey()
	require.NoError(t, err)
	require.NoError(t, addr.Validate())
	assert.Len(t, seed, 128)

	other, _, err := GenerateCoinKey()
	require.NoError(t, err)
	assert.False(t, addr.Equals(other))
}
