package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/escrowd"
	weaveapp "github.com/iov-one/escrowd/app"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/commands/server"
	"github.com/iov-one/escrowd/crypto"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "escrow-test-1"

type node struct {
	t      *testing.T
	app    weaveapp.BaseApp
	height int64
	now    time.Time
	seqs   map[string]int64
}

func newNode(t *testing.T, state json.RawMessage) *node {
	t.Helper()
	abciApp, err := GenerateApp(&server.Options{Logger: log.NewNopLogger()})
	require.NoError(t, err)
	n := &node{
		t:    t,
		app:  abciApp.(weaveapp.BaseApp),
		now:  time.Date(2019, 6, 1, 10, 0, 0, 0, time.UTC),
		seqs: make(map[string]int64),
	}
	n.app.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: state})
	n.block()
	return n
}

// block opens a new block, runs every transaction and commits.
func (n *node) block(txs ...[]byte) []abci.ResponseDeliverTx {
	n.height++
	n.now = n.now.Add(5 * time.Second)
	n.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: chainID,
		Height:  n.height,
		Time:    n.now,
	}})
	var res []abci.ResponseDeliverTx
	for _, tx := range txs {
		n.app.CheckTx(tx)
		res = append(res, n.app.DeliverTx(tx))
	}
	n.app.EndBlock(abci.RequestEndBlock{Height: n.height})
	n.app.Commit()
	return res
}

func tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}

func (n *node) sign(key *crypto.PrivateKey, msg weave.Msg) []byte {
	n.t.Helper()
	tx := &Tx{Msg: msg}
	addr := key.PublicKey().Address().String()
	sig, err := sigs.SignTx(key, tx, chainID, n.seqs[addr])
	require.NoError(n.t, err)
	n.seqs[addr]++
	tx.Signatures = []*sigs.StdSignature{sig}
	raw, err := tx.Marshal()
	require.NoError(n.t, err)
	return raw
}

func (n *node) balance(addr weave.Address) coin.Coin {
	n.t.Helper()
	res := n.app.Query(abci.RequestQuery{Path: "/wallets", Data: addr})
	require.Equal(n.t, uint32(0), res.Code, res.Log)
	var set cash.Set
	require.NoError(n.t, weaveapp.UnmarshalOneResult(res.Value, &set))
	return set.Coins.Get("TON")
}

func (n *node) getters(id []byte) *escrow.Getters {
	n.t.Helper()
	res := n.app.Query(abci.RequestQuery{Path: "/escrows/getters", Data: id})
	require.Equal(n.t, uint32(0), res.Code, res.Log)
	var keys weaveapp.ResultSet
	require.NoError(n.t, keys.Unmarshal(res.Key))
	if len(keys.Results) == 0 {
		return nil
	}
	var g escrow.Getters
	require.NoError(n.t, weaveapp.UnmarshalOneResult(res.Value, &g))
	return &g
}

func TestNativeEscrowSettlement(t *testing.T) {
	collector := crypto.GenPrivKeyEd25519()
	seller := crypto.GenPrivKeyEd25519()
	buyer := crypto.GenPrivKeyEd25519()
	guarantor := crypto.GenPrivKeyEd25519()

	state, err := json.Marshal(dict{
		"cash": []cash.GenesisAccount{
			{Address: buyer.PublicKey().Address(), Set: cash.Set{Coins: coin.Coins{coin.NewCoinp(10, 0, "TON")}}},
			{Address: guarantor.PublicKey().Address(), Set: cash.Set{Coins: coin.Coins{coin.NewCoinp(1, 0, "TON")}}},
		},
		"conf": dict{
			"cash": cash.Configuration{
				CollectorAddress: collector.PublicKey().Address(),
				MinimalFee:       coin.NewCoin(0, 0, "TON"),
			},
			"escrow": escrow.Configuration{
				Collector:     collector.PublicKey().Address(),
				NativeTicker:  "TON",
				ProcessingFee: coin.NewCoin(0, 10000000, "TON"),
				ForwardFee:    coin.NewCoin(0, 50000000, "TON"),
			},
		},
	})
	require.NoError(t, err)
	n := newNode(t, state)

	config := escrow.DealConfig{
		Price:              2000000000,
		Asset:              escrow.NativeAsset{},
		RoyaltyNumerator:   1,
		RoyaltyDenominator: 100,
		Seller:             seller.PublicKey().Address(),
		Buyer:              buyer.PublicKey().Address(),
		Guarantor:          guarantor.PublicKey().Address(),
	}

	res := n.block(n.sign(buyer, &escrow.CreateMsg{
		Config: config,
		Value:  coin.NewCoinp(2, 20000000, "TON"),
	}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	id := res[0].Data
	wantID, err := config.ID()
	require.NoError(t, err)
	assert.Equal(t, wantID, id)

	g := n.getters(id)
	require.NotNil(t, g)
	assert.Equal(t, uint64(2000000000), g.Price)
	assert.Equal(t, uint64(2020000000), g.FullPrice)
	assert.False(t, g.IsCompleted)
	assert.Empty(t, g.JettonMaster)

	fee := coin.NewCoinp(0, 10000000, "TON")

	// Only the guarantor may settle and the deal must be completed before
	// the royalties are collected.
	res = n.block(
		n.sign(seller, &escrow.ApproveMsg{EscrowID: id, QueryID: 1, Value: fee}),
		n.sign(guarantor, &escrow.CollectRoyaltiesMsg{EscrowID: id, QueryID: 2, Value: fee}),
	)
	assert.Equal(t, escrow.ErrUnauthorized.ABCICode(), res[0].Code, res[0].Log)
	assert.Equal(t, uint32(501), res[0].Code)
	assert.Equal(t, uint32(502), res[1].Code, res[1].Log)

	res = n.block(n.sign(guarantor, &escrow.ApproveMsg{EscrowID: id, QueryID: 3, Value: fee}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Contains(t, res[0].Tags, tag("msg", "escrow/approve"))

	assert.Equal(t, coin.NewCoin(2, 0, "TON"), n.balance(seller.PublicKey().Address()))
	g = n.getters(id)
	require.NotNil(t, g)
	assert.True(t, g.IsCompleted)

	res = n.block(n.sign(guarantor, &escrow.CollectRoyaltiesMsg{EscrowID: id, QueryID: 4, Value: fee}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	assert.Nil(t, n.getters(id), "collected escrow must be destroyed")
	assert.Equal(t, coin.NewCoin(1, 0, "TON"), n.balance(guarantor.PublicKey().Address()))
	assert.Equal(t, coin.NewCoin(0, 20000000, "TON"), n.balance(collector.PublicKey().Address()))
	assert.Equal(t, coin.NewCoin(7, 980000000, "TON"), n.balance(buyer.PublicKey().Address()))
}

func TestGenesisState(t *testing.T) {
	owner := crypto.GenPrivKeyEd25519().PublicKey().Address()
	state, err := GenesisState(owner, "TON")
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(state, new(weave.Options)))
	n := newNode(t, state)
	assert.Equal(t, chainID, n.app.GetChainID())
	assert.Equal(t, coin.NewCoin(1000000, 0, "TON"), n.balance(owner))

	_, err = GenInitOptions([]string{"ton"})
	assert.Error(t, err)
}
