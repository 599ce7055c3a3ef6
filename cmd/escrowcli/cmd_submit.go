package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it. The
command waits until the transaction is included in a block.

For certain transactions the response is written out. Make sure to collect
enough signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
	)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return err
	}
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}

	res, err := newClient(*tmAddrFl).BroadcastTxCommit(raw)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}
	if res.CheckTx.IsErr() {
		return fmt.Errorf("check failed with code %d: %s", res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.DeliverTx.IsErr() {
		return fmt.Errorf("deliver failed with code %d: %s", res.DeliverTx.Code, res.DeliverTx.Log)
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return fmt.Errorf("cannot extract message from transaction: %s", err)
	}
	format, ok := formatters[msg.Path()]
	if !ok {
		return nil
	}
	pretty, err := format(res.DeliverTx.Data)
	if err != nil {
		return fmt.Errorf("cannot format result data %x: %s", res.DeliverTx.Data, err)
	}
	_, err = fmt.Fprintln(output, pretty)
	return err
}

// formatters contains a mapping of a message path to response parser. Response
// parse function accepts a raw bytes of serialized response and must return a
// human representation of that data.
//
// Do not register a message if you want response returned after its submission
// to be ignored (not printed to the user).
var formatters = map[string]func([]byte) (string, error){
	escrow.CreateMsg{}.Path():       fmtHex,
	jetton.CreateMinterMsg{}.Path(): fmtHex,
}

func fmtHex(raw []byte) (string, error) {
	return hex.EncodeToString(raw), nil
}
