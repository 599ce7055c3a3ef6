package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/escrowd"
	weaveapp "github.com/iov-one/escrowd/app"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/cron"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
	"github.com/iov-one/escrowd/x/sigs"
)

// resultParser maps a query path to a constructor of the model stored
// under it.
var resultParser = map[string]func() weave.Persistent{
	"/auth":            func() weave.Persistent { return &sigs.UserData{} },
	"/crontaskresults": func() weave.Persistent { return &cron.TaskResult{} },
	"/escrows":         func() weave.Persistent { return &escrow.Escrow{} },
	"/escrows/address": func() weave.Persistent { return &escrow.Escrow{} },
	"/escrows/getters": func() weave.Persistent { return &escrow.Getters{} },
	"/jettonwallets":   func() weave.Persistent { return &jetton.Wallet{} },
	"/minters":         func() weave.Persistent { return &jetton.Minter{} },
	"/wallets":         func() weave.Persistent { return &cash.Set{} },
}

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Query the application state and print the found models as JSON.

Escrows are found by their ID under /escrows and /escrows/getters and by their
address under /escrows/address. Wallets and signer sequences are found by
address under /wallets and /auth.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
		pathFl   = fl.String("path", "/escrows/getters", "Query path.")
		dataFl   = flHex(fl, "data", "", "Hex encoded key, for example an escrow ID.")
		addrFl   = flAddress(fl, "addr", "", "Address used as the key. An alternative to the data flag.")
		prefixFl = fl.Bool("prefix", false, "Use the key as a prefix and return all matching models.")
	)
	fl.Parse(args)

	parse, ok := resultParser[*pathFl]
	if !ok {
		return fmt.Errorf("no decoder for path %q", *pathFl)
	}
	data := *dataFl
	if len(*addrFl) != 0 {
		data = *addrFl
	}
	queryPath := *pathFl
	if *prefixFl {
		queryPath += "?" + weave.PrefixQueryMod
	}

	res, err := newClient(*tmAddrFl).ABCIQuery(queryPath, data)
	if err != nil {
		return fmt.Errorf("failed to run query: %s", err)
	}
	if res.Response.Code != 0 {
		return errors.New(res.Response.Log)
	}
	var values weaveapp.ResultSet
	if err := values.Unmarshal(res.Response.Value); err != nil {
		return fmt.Errorf("cannot decode query result: %s", err)
	}

	result := make([]interface{}, 0, len(values.Results))
	for i, raw := range values.Results {
		obj := parse()
		if err := obj.Unmarshal(raw); err != nil {
			return fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		result = append(result, obj)
	}
	pretty, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
