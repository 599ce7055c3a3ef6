package main

import (
	"bytes"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/cmd/escrowd/app"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/weavetest/assert"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
)

const (
	sellerHex    = "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"
	buyerHex     = "7E3B5BA5A35BE1B0C6EF2ED0B20EC8C2A2A6E0F1"
	guarantorHex = "1D4A54E2BD96ABD1F47C2A3C8BE8F0E5AD6C9A42"
	escrowIDHex  = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
)

func mustAddress(t testing.TB, enc string) weave.Address {
	t.Helper()
	a, err := weave.ParseAddress(enc)
	if err != nil {
		t.Fatalf("cannot parse address %q: %s", enc, err)
	}
	return a
}

func txMsg(t testing.TB, raw []byte) weave.Msg {
	t.Helper()
	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	msg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	return msg
}

func TestCmdDeployNative(t *testing.T) {
	out := mustRun(t, cmdDeploy, nil,
		"-seller", sellerHex,
		"-buyer", buyerHex,
		"-guarantor", guarantorHex,
		"-price", "2000000000",
		"-royalty-num", "1",
		"-royalty-den", "100",
		"-value", "2.02 TON",
	)
	msg := txMsg(t, out).(*escrow.CreateMsg)

	assert.Equal(t, uint64(2000000000), msg.Config.Price)
	assert.Equal(t, escrow.NativeAsset{}, msg.Config.Asset)
	assert.Equal(t, uint64(1), msg.Config.RoyaltyNumerator)
	assert.Equal(t, uint64(100), msg.Config.RoyaltyDenominator)
	assert.Equal(t, mustAddress(t, sellerHex), msg.Config.Seller)
	assert.Equal(t, mustAddress(t, buyerHex), msg.Config.Buyer)
	assert.Equal(t, mustAddress(t, guarantorHex), msg.Config.Guarantor)
	assert.Equal(t, coin.NewCoinp(2, 20000000, "TON"), msg.Value)
}

func TestCmdDeployToken(t *testing.T) {
	master := "B84DC1C0A4A8A5D2C8B8BAF2A2F6E8E8C3D7F1A0"
	out := mustRun(t, cmdDeploy, nil,
		"-seller", sellerHex,
		"-buyer", buyerHex,
		"-guarantor", guarantorHex,
		"-price", "1000",
		"-royalty-num", "5",
		"-jetton", master,
		"-wallet-code", "c0de",
	)
	msg := txMsg(t, out).(*escrow.CreateMsg)

	assert.Equal(t, escrow.TokenAsset{
		Master:     mustAddress(t, master),
		WalletCode: []byte{0xc0, 0xde},
	}, msg.Config.Asset)
	full, err := msg.Config.FullPrice()
	assert.Nil(t, err)
	assert.Equal(t, uint64(1050), full)
	assert.Nil(t, msg.Value)
}

func TestCmdDeployInvalid(t *testing.T) {
	var output bytes.Buffer
	// The seller and the buyer must be different parties.
	err := cmdDeploy(nil, &output, []string{
		"-seller", sellerHex,
		"-buyer", sellerHex,
		"-guarantor", guarantorHex,
		"-price", "10",
	})
	if err == nil {
		t.Fatal("want an error")
	}
	if output.Len() != 0 {
		t.Fatalf("want no output, got %x", output.Bytes())
	}
}

func TestCmdEscrowActions(t *testing.T) {
	id := fromHex(t, escrowIDHex)
	fee := coin.NewCoinp(0, 10000000, "TON")
	args := []string{"-escrow", escrowIDHex, "-query-id", "7", "-value", "0.01 TON"}

	cases := map[string]struct {
		cmd  command
		want weave.Msg
	}{
		"approve": {
			cmd:  cmdApprove,
			want: &escrow.ApproveMsg{EscrowID: id, QueryID: 7, Value: fee},
		},
		"refund": {
			cmd:  cmdRefund,
			want: &escrow.RefundMsg{EscrowID: id, QueryID: 7, Value: fee},
		},
		"collect": {
			cmd:  cmdCollect,
			want: &escrow.CollectRoyaltiesMsg{EscrowID: id, QueryID: 7, Value: fee},
		},
		"retry": {
			cmd:  cmdRetry,
			want: &escrow.RetryTransferMsg{EscrowID: id, QueryID: 7, Value: fee},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			out := mustRun(t, tc.cmd, nil, args...)
			assert.Equal(t, tc.want, txMsg(t, out))
		})
	}
}

func TestCmdDeposit(t *testing.T) {
	id := fromHex(t, escrowIDHex)
	escrowAddr := escrow.Condition(id).Address()

	out := mustRun(t, cmdDeposit, nil,
		"-escrow", escrowIDHex,
		"-from", buyerHex,
		"-amount", "2.02 TON",
	)
	assert.Equal(t, &cash.SendMsg{
		Source:      mustAddress(t, buyerHex),
		Destination: escrowAddr,
		Amount:      coin.NewCoinp(2, 20000000, "TON"),
		Memo:        "escrow deposit",
	}, txMsg(t, out))

	master := "B84DC1C0A4A8A5D2C8B8BAF2A2F6E8E8C3D7F1A0"
	out = mustRun(t, cmdDeposit, nil,
		"-escrow", escrowIDHex,
		"-from", buyerHex,
		"-jetton", master,
		"-tokens", "1050",
		"-query-id", "3",
		"-forward", "0.05 TON",
	)
	assert.Equal(t, &jetton.TransferMsg{
		QueryID:             3,
		Master:              mustAddress(t, master),
		Owner:               mustAddress(t, buyerHex),
		Amount:              1050,
		Destination:         escrowAddr,
		ResponseDestination: mustAddress(t, buyerHex),
		ForwardAmount:       coin.NewCoinp(0, 50000000, "TON"),
	}, txMsg(t, out))
}

func TestCmdWithFee(t *testing.T) {
	raw := mustRun(t, cmdApprove, nil, "-escrow", escrowIDHex)
	raw = mustRun(t, cmdWithFee, raw, "-amount", "0.5 TON", "-payer", buyerHex)

	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		t.Fatalf("cannot unmarshal transaction: %s", err)
	}
	assert.Equal(t, &cash.FeeInfo{
		Payer: mustAddress(t, buyerHex),
		Fees:  coin.NewCoinp(0, 500000000, "TON"),
	}, tx.Fees)

	raw = mustRun(t, cmdWithFee, raw)
	tx = app.Tx{}
	if err := tx.Unmarshal(raw); err != nil {
		t.Fatalf("cannot unmarshal transaction: %s", err)
	}
	assert.Nil(t, tx.Fees)
}
