package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/escrowd"
	weaveapp "github.com/iov-one/escrowd/app"
	"github.com/iov-one/escrowd/x/sigs"
	cmn "github.com/tendermint/tendermint/libs/common"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain ID and the sequence of the signer are fetched from the node unless
provided.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use ESCROWCLI_PRIV_KEY environment variable to set it.")
		chainIDFl = fl.String("chain-id", "", "Chain ID. Fetched from the node if not provided.")
		seqFl     = fl.Int64("seq", -1, "Sequence of the signer. Fetched from the node if negative.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	tx, err := readTx(input)
	if err != nil {
		return err
	}

	chainID, seq := *chainIDFl, *seqFl
	if chainID == "" || seq < 0 {
		client := newClient(*tmAddrFl)
		if chainID == "" {
			status, err := client.Status()
			if err != nil {
				return fmt.Errorf("cannot fetch node status: %s", err)
			}
			chainID = status.NodeInfo.Network
		}
		if seq < 0 {
			if seq, err = nextSequence(client, key.PublicKey().Address()); err != nil {
				return fmt.Errorf("cannot get the next sequence number: %s", err)
			}
		}
	}

	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)
	return writeTx(output, tx)
}

// nextSequence returns the sequence value the next transaction signed by
// the given address must use.
func nextSequence(client tmClient, signer weave.Address) (int64, error) {
	res, err := client.ABCIQuery("/auth", cmn.HexBytes(signer))
	if err != nil {
		return 0, err
	}
	if res.Response.Code != 0 {
		return 0, errors.New(res.Response.Log)
	}
	var user sigs.UserData
	if err := weaveapp.UnmarshalOneResult(res.Response.Value, &user); err != nil {
		return 0, err
	}
	return user.Sequence, nil
}
