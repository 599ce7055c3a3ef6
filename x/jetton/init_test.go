package jetton

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	admin := weavetest.NewCondition().Address()
	alice := weavetest.NewCondition().Address()

	raw, err := json.Marshal(map[string]interface{}{
		"jetton": []interface{}{
			map[string]interface{}{
				"admin":       admin,
				"content":     "usd token",
				"wallet_code": []byte("wallet-v1"),
				"balances": []interface{}{
					map[string]interface{}{"owner": alice, "amount": 1500},
				},
			},
		},
	})
	require.NoError(t, err)
	var opts weave.Options
	require.NoError(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, weave.GenesisParams{}, db))

	master := MinterCondition(weavetest.SequenceID(1)).Address()
	ctrl := NewController(nil, nil)
	got, err := ctrl.Balance(db, master, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), got)

	m, err := ctrl.Minter(db, master)
	require.NoError(t, err)
	assert.Equal(t, admin, m.Admin)
	assert.Equal(t, []byte("wallet-v1"), m.WalletCode)
}
