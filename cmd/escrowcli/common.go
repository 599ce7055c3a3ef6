package main

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/escrowd/cmd/escrowd/app"
	cmn "github.com/tendermint/tendermint/libs/common"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// writeTx writes the binary representation of the transaction.
func writeTx(w io.Writer, tx *app.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	_, err = w.Write(raw)
	return err
}

// readTx reads a binary serialized transaction. The whole input is
// consumed.
func readTx(r io.Reader) (*app.Tx, error) {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction: %s", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no input data")
	}
	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("cannot deserialize transaction: %s", err)
	}
	return &tx, nil
}

// tmClient is the part of the tendermint RPC API used by this program.
type tmClient interface {
	ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error)
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
	Status() (*ctypes.ResultStatus, error)
}

// newClient returns a client connected to the tendermint node under the
// given address. Tests replace it to talk to an in-process application.
var newClient = func(addr string) tmClient {
	return rpcclient.NewHTTP(addr, "/websocket")
}
