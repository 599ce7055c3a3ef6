package main

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/crypto"
	"github.com/iov-one/escrowd/weavetest/assert"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
)

type dict map[string]interface{}

func TestEscrowLifecycle(t *testing.T) {
	buyer := crypto.GenPrivKeyEd25519()
	guarantor := crypto.GenPrivKeyEd25519()
	seller := crypto.GenPrivKeyEd25519().PublicKey().Address()
	collector := crypto.GenPrivKeyEd25519().PublicKey().Address()

	state, err := json.Marshal(dict{
		"cash": []cash.GenesisAccount{
			{Address: buyer.PublicKey().Address(), Set: cash.Set{Coins: coin.Coins{coin.NewCoinp(10, 0, "TON")}}},
			{Address: guarantor.PublicKey().Address(), Set: cash.Set{Coins: coin.Coins{coin.NewCoinp(1, 0, "TON")}}},
		},
		"conf": dict{
			"cash": cash.Configuration{
				CollectorAddress: collector,
				MinimalFee:       coin.NewCoin(0, 0, "TON"),
			},
			"escrow": escrow.Configuration{
				Collector:     collector,
				NativeTicker:  "TON",
				ProcessingFee: coin.NewCoin(0, 10000000, "TON"),
				ForwardFee:    coin.NewCoin(0, 50000000, "TON"),
			},
		},
	})
	assert.Nil(t, err)
	withClient(t, newAppClient(t, state))

	buyerKey := writeKey(t, buyer)
	guarantorKey := writeKey(t, guarantor)

	tx := mustRun(t, cmdDeploy, nil,
		"-seller", seller.String(),
		"-buyer", buyer.PublicKey().Address().String(),
		"-guarantor", guarantor.PublicKey().Address().String(),
		"-price", "2000000000",
		"-royalty-num", "1",
		"-royalty-den", "100",
		"-value", "2.02 TON",
	)
	tx = mustRun(t, cmdSignTransaction, tx, "-key", buyerKey)
	out := mustRun(t, cmdSubmitTransaction, tx)
	escrowID := strings.TrimSpace(string(out))
	assert.Equal(t, 64, len(escrowID))

	var getters []escrow.Getters
	out = mustRun(t, cmdQuery, nil, "-path", "/escrows/getters", "-data", escrowID)
	assert.Nil(t, json.Unmarshal(out, &getters))
	assert.Equal(t, []escrow.Getters{{Price: 2000000000, FullPrice: 2020000000}}, getters)

	// The guarantor signs the approval. Both transactions of the guarantor
	// fetch the sequence from the node.
	tx = mustRun(t, cmdApprove, nil, "-escrow", escrowID, "-query-id", "1", "-value", "0.01 TON")
	tx = mustRun(t, cmdSignTransaction, tx, "-key", guarantorKey)
	mustRun(t, cmdSubmitTransaction, tx)

	var wallets []cash.Set
	out = mustRun(t, cmdQuery, nil, "-path", "/wallets", "-addr", seller.String())
	assert.Nil(t, json.Unmarshal(out, &wallets))
	assert.Equal(t, []cash.Set{{Coins: coin.Coins{coin.NewCoinp(2, 0, "TON")}}}, wallets)

	out = mustRun(t, cmdQuery, nil, "-path", "/escrows/getters", "-data", escrowID)
	getters = nil
	assert.Nil(t, json.Unmarshal(out, &getters))
	assert.Equal(t, 1, len(getters))
	assert.Equal(t, true, getters[0].IsCompleted)

	tx = mustRun(t, cmdCollect, nil, "-escrow", escrowID, "-query-id", "2", "-value", "0.01 TON")
	tx = mustRun(t, cmdSignTransaction, tx, "-key", guarantorKey)
	mustRun(t, cmdSubmitTransaction, tx)

	out = mustRun(t, cmdQuery, nil, "-path", "/escrows/getters", "-data", escrowID)
	getters = nil
	assert.Nil(t, json.Unmarshal(out, &getters))
	assert.Equal(t, 0, len(getters))

	// The seller is not the guarantor. The node rejects the approval with
	// the unauthorized exit code.
	tx = mustRun(t, cmdDeploy, nil,
		"-seller", seller.String(),
		"-buyer", buyer.PublicKey().Address().String(),
		"-guarantor", guarantor.PublicKey().Address().String(),
		"-price", "1000000000",
		"-royalty-num", "1",
		"-value", "1.01 TON",
	)
	tx = mustRun(t, cmdSignTransaction, tx, "-key", buyerKey)
	out = mustRun(t, cmdSubmitTransaction, tx)
	secondID := strings.TrimSpace(string(out))
	_, err = hex.DecodeString(secondID)
	assert.Nil(t, err)

	tx = mustRun(t, cmdApprove, nil, "-escrow", secondID, "-query-id", "3")
	tx = mustRun(t, cmdSignTransaction, tx, "-key", buyerKey)
	err = cmdSubmitTransaction(strings.NewReader(string(tx)), new(strings.Builder), nil)
	if err == nil || !strings.Contains(err.Error(), "code 501") {
		t.Fatalf("want unauthorized error, got %v", err)
	}
}

func TestSignOffline(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	keyPath := writeKey(t, key)

	tx := mustRun(t, cmdRefund, nil, "-escrow", escrowIDHex)
	// The node is never contacted when the chain ID and the sequence are
	// given.
	withClient(t, nil)
	tx = mustRun(t, cmdSignTransaction, tx, "-key", keyPath, "-chain-id", "offline-chain", "-seq", "4")

	signed, err := readTx(strings.NewReader(string(tx)))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(signed.Signatures))
	assert.Equal(t, int64(4), signed.Signatures[0].Sequence)
	assert.Equal(t, key.PublicKey(), signed.Signatures[0].Pubkey)

	out := mustRun(t, cmdTransactionView, tx)
	assert.Equal(t, true, strings.Contains(string(out), "escrow_id"))
}
