package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/cmd/escrowd/app"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
)

func cmdDeploy(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that deploys an escrow for a deal between a seller and a
buyer, settled by a guarantor.

The escrow id is derived from the deal configuration and is printed by the
submit command. Deploying the same deal again deposits the attached value into
the existing escrow.
`)
		fl.PrintDefaults()
	}
	var (
		sellerFl     = flAddress(fl, "seller", "", "Address of the seller. Receives the price on approval.")
		buyerFl      = flAddress(fl, "buyer", "", "Address of the buyer. Receives the price on refund.")
		guarantorFl  = flAddress(fl, "guarantor", "", "Address of the guarantor. The only party that can settle the deal.")
		priceFl      = fl.Uint64("price", 0, "Price of the deal, in the smallest units of the asset.")
		royaltyNumFl = fl.Uint64("royalty-num", 0, "Royalty numerator.")
		royaltyDenFl = fl.Uint64("royalty-den", 100, "Royalty denominator.")
		jettonFl     = flAddress(fl, "jetton", "", "Address of the token master. The deal is in native currency if not provided.")
		walletCodeFl = flHex(fl, "wallet-code", "", "Hex encoded wallet code of the token master.")
		valueFl      = flCoin(fl, "value", "", "Native value sent together with the deployment.")
	)
	fl.Parse(args)

	config := escrow.DealConfig{
		Price:              *priceFl,
		Asset:              escrow.NativeAsset{},
		RoyaltyNumerator:   *royaltyNumFl,
		RoyaltyDenominator: *royaltyDenFl,
		Seller:             *sellerFl,
		Buyer:              *buyerFl,
		Guarantor:          *guarantorFl,
	}
	if len(*jettonFl) != 0 {
		config.Asset = escrow.TokenAsset{Master: *jettonFl, WalletCode: *walletCodeFl}
	}
	msg := escrow.CreateMsg{
		Config: config,
		Value:  optionalCoin(valueFl),
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, &app.Tx{Msg: &msg})
}

func cmdApprove(input io.Reader, output io.Writer, args []string) error {
	return cmdEscrowAction(output, args, "approve", `
Create a transaction that releases the price of an escrow to the seller. It
must be signed by the guarantor.
`)
}

func cmdRefund(input io.Reader, output io.Writer, args []string) error {
	return cmdEscrowAction(output, args, "refund", `
Create a transaction that returns the price of an escrow to the buyer. It must
be signed by the guarantor.
`)
}

func cmdCollect(input io.Reader, output io.Writer, args []string) error {
	return cmdEscrowAction(output, args, "collect", `
Create a transaction that sends the royalty left in a completed escrow to the
guarantor and destroys the escrow. It must be signed by the guarantor.
`)
}

func cmdRetry(input io.Reader, output io.Writer, args []string) error {
	return cmdEscrowAction(output, args, "retry", `
Create a transaction that dispatches a bounced token transfer of an escrow
again. It must be signed by the guarantor.
`)
}

// cmdEscrowAction builds one of the guarantor messages. They all share
// the same set of flags.
func cmdEscrowAction(output io.Writer, args []string, action, usage string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		fl.PrintDefaults()
	}
	var (
		escrowFl  = flHex(fl, "escrow", "", "Hex encoded ID of the escrow.")
		queryIDFl = fl.Uint64("query-id", 0, "Query ID correlating the token transfers caused by this message.")
		valueFl   = flCoin(fl, "value", "", "Native value attached to pay for the processing fees.")
	)
	fl.Parse(args)

	if len(*escrowFl) == 0 {
		flagDie("escrow ID is required")
	}

	var msg weave.Msg
	switch action {
	case "approve":
		msg = &escrow.ApproveMsg{EscrowID: *escrowFl, QueryID: *queryIDFl, Value: optionalCoin(valueFl)}
	case "refund":
		msg = &escrow.RefundMsg{EscrowID: *escrowFl, QueryID: *queryIDFl, Value: optionalCoin(valueFl)}
	case "collect":
		msg = &escrow.CollectRoyaltiesMsg{EscrowID: *escrowFl, QueryID: *queryIDFl, Value: optionalCoin(valueFl)}
	case "retry":
		msg = &escrow.RetryTransferMsg{EscrowID: *escrowFl, QueryID: *queryIDFl, Value: optionalCoin(valueFl)}
	default:
		return fmt.Errorf("unknown escrow action %q", action)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, &app.Tx{Msg: msg})
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that funds an escrow.

Native currency is sent directly to the escrow address. When a token master is
given, tokens are transferred to the wallet of the escrow and the forward value
pays for the transfer notification.
`)
		fl.PrintDefaults()
	}
	var (
		escrowFl  = flHex(fl, "escrow", "", "Hex encoded ID of the escrow.")
		fromFl    = flAddress(fl, "from", "", "Address of the funds owner. Usually the buyer.")
		amountFl  = flCoin(fl, "amount", "", "Native amount to deposit, for example \"2.02 TON\".")
		jettonFl  = flAddress(fl, "jetton", "", "Address of the token master. Deposit tokens instead of native currency.")
		tokensFl  = fl.Uint64("tokens", 0, "Amount of tokens to deposit.")
		queryIDFl = fl.Uint64("query-id", 0, "Query ID of the token transfer.")
		forwardFl = flCoin(fl, "forward", "", "Native value forwarded with the token transfer notification.")
	)
	fl.Parse(args)

	if len(*escrowFl) == 0 {
		flagDie("escrow ID is required")
	}
	escrowAddr := escrow.Condition(*escrowFl).Address()

	var msg weave.Msg
	if len(*jettonFl) == 0 {
		if coin.IsEmpty(amountFl) {
			return errors.New("amount is required")
		}
		msg = &cash.SendMsg{
			Source:      *fromFl,
			Destination: escrowAddr,
			Amount:      amountFl,
			Memo:        "escrow deposit",
		}
	} else {
		msg = &jetton.TransferMsg{
			QueryID:             *queryIDFl,
			Master:              *jettonFl,
			Owner:               *fromFl,
			Amount:              *tokensFl,
			Destination:         escrowAddr,
			ResponseDestination: *fromFl,
			ForwardAmount:       optionalCoin(forwardFl),
		}
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, &app.Tx{Msg: msg})
}

func cmdWithFee(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a transaction from the input and set the fee paid for processing it.
`)
		fl.PrintDefaults()
	}
	var (
		payerFl  = flAddress(fl, "payer", "", "Optional address of the fee payer. The main signer pays if not provided.")
		amountFl = flCoin(fl, "amount", "", "Fee value, for example \"0.01 TON\". The fee is removed if zero.")
	)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return err
	}
	if coin.IsEmpty(amountFl) {
		tx.Fees = nil
	} else {
		tx.Fees = &cash.FeeInfo{Payer: *payerFl, Fees: amountFl}
	}
	return writeTx(output, tx)
}

// optionalCoin returns nil for a coin flag that was not set.
func optionalCoin(c *coin.Coin) *coin.Coin {
	if coin.IsEmpty(c) {
		return nil
	}
	return c
}
