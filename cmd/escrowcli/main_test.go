package main

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	weaveapp "github.com/iov-one/escrowd/app"
	"github.com/iov-one/escrowd/cmd/escrowd/app"
	"github.com/iov-one/escrowd/commands/server"
	"github.com/iov-one/escrowd/crypto"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

const testChainID = "escrowcli-test"

// appClient serves the tendermint RPC calls using an in-process
// application. Every broadcast transaction is committed in its own block.
type appClient struct {
	app    weaveapp.BaseApp
	height int64
	now    time.Time
}

var _ tmClient = (*appClient)(nil)

func newAppClient(t testing.TB, state json.RawMessage) *appClient {
	t.Helper()
	abciApp, err := app.GenerateApp(&server.Options{Logger: log.NewNopLogger()})
	if err != nil {
		t.Fatalf("cannot generate application: %s", err)
	}
	c := &appClient{
		app: abciApp.(weaveapp.BaseApp),
		now: time.Date(2019, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	c.app.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: state})
	c.commit(nil)
	return c
}

func (c *appClient) ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error) {
	res := c.app.Query(abci.RequestQuery{Path: path, Data: data})
	return &ctypes.ResultABCIQuery{Response: res}, nil
}

func (c *appClient) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	check := c.app.CheckTx(tx)
	if check.IsErr() {
		return &ctypes.ResultBroadcastTxCommit{CheckTx: check}, nil
	}
	deliver := c.commit(tx)
	return &ctypes.ResultBroadcastTxCommit{
		CheckTx:   check,
		DeliverTx: deliver,
		Height:    c.height,
	}, nil
}

func (c *appClient) Status() (*ctypes.ResultStatus, error) {
	return &ctypes.ResultStatus{NodeInfo: p2p.DefaultNodeInfo{Network: testChainID}}, nil
}

// commit runs a block containing the given transaction, if any.
func (c *appClient) commit(tx []byte) abci.ResponseDeliverTx {
	c.height++
	c.now = c.now.Add(5 * time.Second)
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: testChainID,
		Height:  c.height,
		Time:    c.now,
	}})
	var res abci.ResponseDeliverTx
	if tx != nil {
		res = c.app.DeliverTx(tx)
	}
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	return res
}

// withClient makes all commands use the given client until the test ends.
func withClient(t testing.TB, c tmClient) {
	prev := newClient
	newClient = func(string) tmClient { return c }
	t.Cleanup(func() { newClient = prev })
}

type command func(input io.Reader, output io.Writer, args []string) error

// mustRun executes the command with the given input and returns what it
// wrote.
func mustRun(t testing.TB, cmd command, input []byte, args ...string) []byte {
	t.Helper()
	var output bytes.Buffer
	if err := cmd(bytes.NewReader(input), &output, args); err != nil {
		t.Fatalf("command failed: %s", err)
	}
	return output.Bytes()
}

// writeKey stores the private key in a temporary file and returns its
// path.
func writeKey(t testing.TB, key *crypto.PrivateKey) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "escrowcli")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "priv.key")
	if err := ioutil.WriteFile(path, key.Ed25519, 0600); err != nil {
		t.Fatalf("cannot write key: %s", err)
	}
	return path
}
