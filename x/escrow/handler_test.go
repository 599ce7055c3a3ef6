package escrow

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nativeDeal(seller, buyer, guarantor weave.Condition) DealConfig {
	return DealConfig{
		Price:              2000000000,
		Asset:              NativeAsset{},
		RoyaltyNumerator:   1,
		RoyaltyDenominator: 100,
		Seller:             seller.Address(),
		Buyer:              buyer.Address(),
		Guarantor:          guarantor.Address(),
	}
}

func TestNativeEscrowLifecycle(t *testing.T) {
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	guarantor := weavetest.NewCondition()

	env := newTestEnv(t, testConfiguration())
	env.issue(buyer.Address(), ton(10000000000))
	env.issue(guarantor.Address(), ton(1000000000))

	config := nativeDeal(seller, buyer, guarantor)
	full, err := config.FullPrice()
	require.NoError(t, err)
	require.Equal(t, uint64(2020000000), full)

	res, err := env.deliver(&CreateMsg{Config: config, Value: coin.NewCoinp(2, 20000000, ticker)}, buyer)
	require.NoError(t, err)
	id := res.Data
	assert.Contains(t, res.Tags, tagPair("escrow", hex.EncodeToString(id)))
	e, err := env.ctrl.Escrow(env.db, id)
	require.NoError(t, err)
	assert.Equal(t, ton(2020000000), env.balance(e.Address))

	completed, err := env.ctrl.IsCompleted(env.db, id)
	require.NoError(t, err)
	assert.False(t, completed)

	fee := coin.NewCoinp(0, 1000000, ticker)

	for _, signer := range []weave.Condition{seller, buyer} {
		_, err := env.deliver(&ApproveMsg{EscrowID: id, QueryID: 1, Value: fee}, signer)
		assert.True(t, ErrUnauthorized.Is(err), "got %v", err)
		_, err = env.deliver(&RefundMsg{EscrowID: id, QueryID: 1, Value: fee}, signer)
		assert.True(t, ErrUnauthorized.Is(err), "got %v", err)
	}
	assert.Equal(t, ton(2020000000), env.balance(e.Address))

	_, err = env.deliver(&CollectRoyaltiesMsg{EscrowID: id, QueryID: 2, Value: fee}, seller)
	assert.True(t, ErrNotCompleted.Is(err), "got %v", err)
	_, err = env.deliver(&CollectRoyaltiesMsg{EscrowID: id, QueryID: 2, Value: fee}, guarantor)
	assert.True(t, ErrNotCompleted.Is(err), "got %v", err)

	res, err = env.deliver(&ApproveMsg{EscrowID: id, QueryID: 3, Value: fee}, guarantor)
	require.NoError(t, err)
	assert.Contains(t, res.Tags, tagPair("action", "approve"))
	assert.Contains(t, res.Tags, tagPair("query_id", "3"))

	assert.Equal(t, ton(2000000000), env.balance(seller.Address()))
	assert.Equal(t, ton(20000000), env.balance(e.Address))
	assert.Equal(t, ton(1000000), env.balance(env.collector))
	assert.Equal(t, ton(999000000), env.balance(guarantor.Address()))

	completed, err = env.ctrl.IsCompleted(env.db, id)
	require.NoError(t, err)
	assert.True(t, completed)

	_, err = env.deliver(&ApproveMsg{EscrowID: id, QueryID: 4, Value: fee}, guarantor)
	assert.True(t, ErrAlreadyCompleted.Is(err), "got %v", err)
	_, err = env.deliver(&RefundMsg{EscrowID: id, QueryID: 4, Value: fee}, guarantor)
	assert.True(t, ErrAlreadyCompleted.Is(err), "got %v", err)
	assert.Equal(t, ton(2000000000), env.balance(seller.Address()))
	assert.Equal(t, ton(20000000), env.balance(e.Address))

	_, err = env.deliver(&CollectRoyaltiesMsg{EscrowID: id, QueryID: 5, Value: fee}, buyer)
	assert.True(t, ErrUnauthorized.Is(err), "got %v", err)

	res, err = env.deliver(&CollectRoyaltiesMsg{EscrowID: id, QueryID: 5, Value: fee}, guarantor)
	require.NoError(t, err)
	assert.Contains(t, res.Tags, tagPair("action", "collect_royalties"))

	assert.True(t, env.balance(e.Address).IsZero())
	assert.Equal(t, ton(1018000000), env.balance(guarantor.Address()))
	assert.Equal(t, ton(2000000), env.balance(env.collector))

	_, err = env.ctrl.Escrow(env.db, id)
	assert.True(t, errors.ErrNotFound.Is(err), "got %v", err)
}

func TestNativeRefund(t *testing.T) {
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	guarantor := weavetest.NewCondition()

	conf := testConfiguration()
	conf.ProcessingFee = coin.Coin{}
	env := newTestEnv(t, conf)
	env.issue(buyer.Address(), ton(3000000000))

	config := nativeDeal(seller, buyer, guarantor)
	res, err := env.deliver(&CreateMsg{Config: config, Value: coin.NewCoinp(2, 20000000, ticker)}, buyer)
	require.NoError(t, err)
	id := res.Data

	_, err = env.deliver(&RefundMsg{EscrowID: id, QueryID: 1}, guarantor)
	require.NoError(t, err)
	assert.Equal(t, ton(2980000000), env.balance(buyer.Address()))
	assert.True(t, env.balance(seller.Address()).IsZero())

	_, err = env.deliver(&ApproveMsg{EscrowID: id, QueryID: 2}, guarantor)
	assert.True(t, ErrAlreadyCompleted.Is(err), "got %v", err)
	assert.True(t, env.balance(seller.Address()).IsZero())
}

func TestSettlementPreconditions(t *testing.T) {
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	guarantor := weavetest.NewCondition()
	config := nativeDeal(seller, buyer, guarantor)

	cases := map[string]struct {
		deposit *coin.Coin
		value   *coin.Coin
		wantErr *errors.Error
	}{
		"full price and fee": {
			deposit: coin.NewCoinp(2, 20000000, ticker),
			value:   coin.NewCoinp(0, 1000000, ticker),
			wantErr: nil,
		},
		"more than full price": {
			deposit: coin.NewCoinp(5, 0, ticker),
			value:   coin.NewCoinp(1, 0, ticker),
			wantErr: nil,
		},
		"price without royalty": {
			deposit: coin.NewCoinp(2, 0, ticker),
			value:   coin.NewCoinp(0, 1000000, ticker),
			wantErr: errors.ErrInsufficientAmount,
		},
		"nothing deposited": {
			value:   coin.NewCoinp(0, 1000000, ticker),
			wantErr: errors.ErrInsufficientAmount,
		},
		"fee not paid": {
			deposit: coin.NewCoinp(2, 20000000, ticker),
			wantErr: errors.ErrInsufficientAmount,
		},
		"fee too low": {
			deposit: coin.NewCoinp(2, 20000000, ticker),
			value:   coin.NewCoinp(0, 999999, ticker),
			wantErr: errors.ErrInsufficientAmount,
		},
		"fee in a wrong currency": {
			deposit: coin.NewCoinp(2, 20000000, ticker),
			value:   coin.NewCoinp(1, 0, "ETH"),
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t, testConfiguration())
			env.issue(buyer.Address(), ton(10000000000))
			env.issue(guarantor.Address(), ton(1000000000))
			env.issue(guarantor.Address(), coin.NewCoin(1, 0, "ETH"))

			res, err := env.deliver(&CreateMsg{Config: config, Value: tc.deposit}, buyer)
			require.NoError(t, err)
			id := res.Data

			_, err = env.deliver(&ApproveMsg{EscrowID: id, QueryID: 1, Value: tc.value}, guarantor)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			completed, err := env.ctrl.IsCompleted(env.db, id)
			require.NoError(t, err)
			assert.Equal(t, tc.wantErr == nil, completed)
		})
	}
}

func TestRedeployIsDeposit(t *testing.T) {
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	guarantor := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	env := newTestEnv(t, testConfiguration())
	env.issue(buyer.Address(), ton(2000000000))
	env.issue(stranger.Address(), ton(20000000))

	config := nativeDeal(seller, buyer, guarantor)
	first, err := env.deliver(&CreateMsg{Config: config, Value: coin.NewCoinp(2, 0, ticker)}, buyer)
	require.NoError(t, err)
	second, err := env.deliver(&CreateMsg{Config: config, Value: coin.NewCoinp(0, 20000000, ticker)}, stranger)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)

	e, err := env.ctrl.Escrow(env.db, first.Data)
	require.NoError(t, err)
	assert.Equal(t, ton(2020000000), env.balance(e.Address))

	_, err = env.deliver(&CreateMsg{Config: config, Value: coin.NewCoinp(1, 0, ticker)})
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)

	other := config
	other.Price = 3000000000
	third, err := env.deliver(&CreateMsg{Config: other})
	require.NoError(t, err)
	assert.NotEqual(t, first.Data, third.Data)
}

func TestUpdateConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	conf := testConfiguration()
	conf.Owner = owner.Address()
	env := newTestEnv(t, conf)

	patch := &UpdateConfigurationMsg{Patch: &Configuration{ProcessingFee: ton(3000000)}}
	_, err := env.deliver(patch, stranger)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)
	_, err = env.deliver(patch, owner)
	require.NoError(t, err)

	got, err := loadConf(env.db)
	require.NoError(t, err)
	assert.Equal(t, ton(3000000), got.ProcessingFee)
	assert.Equal(t, conf.Collector, got.Collector)
}

func TestGettersQuery(t *testing.T) {
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	guarantor := weavetest.NewCondition()

	env := newTestEnv(t, testConfiguration())
	res, err := env.deliver(&CreateMsg{Config: nativeDeal(seller, buyer, guarantor)})
	require.NoError(t, err)

	qr := weave.NewQueryRouter()
	RegisterQuery(qr)

	models, err := qr.Handler("/escrows/getters").Query(env.db, weave.KeyQueryMod, res.Data)
	require.NoError(t, err)
	require.Len(t, models, 1)
	var g Getters
	require.NoError(t, g.Unmarshal(models[0].Value))
	assert.Equal(t, Getters{Price: 2000000000, FullPrice: 2020000000}, g)

	e, err := env.ctrl.Escrow(env.db, res.Data)
	require.NoError(t, err)
	models, err = qr.Handler("/escrows/address").Query(env.db, weave.KeyQueryMod, e.Address)
	require.NoError(t, err)
	require.Len(t, models, 1)

	models, err = qr.Handler("/escrows/getters").Query(env.db, weave.KeyQueryMod, make([]byte, idLength))
	require.NoError(t, err)
	assert.Empty(t, models)
}
