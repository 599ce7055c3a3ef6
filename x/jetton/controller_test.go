package jetton

import (
	"testing"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC)

func TestWalletAddress(t *testing.T) {
	master := weavetest.NewCondition().Address()
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	a := WalletAddress(master, alice, []byte("v1"))
	assert.Equal(t, a, WalletAddress(master, alice, []byte("v1")))
	assert.NotEqual(t, a, WalletAddress(master, bob, []byte("v1")))
	assert.NotEqual(t, a, WalletAddress(master, alice, []byte("v2")))
	assert.NoError(t, a.Validate())
}

func TestTransfer(t *testing.T) {
	admin := weavetest.NewCondition().Address()
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	resp := weavetest.NewCondition().Address()
	code := []byte("wallet-v1")

	cases := map[string]struct {
		msg              TransferMsg
		wantErr          *errors.Error
		wantAlice        uint64
		wantBob          uint64
		wantNotification bool
		wantExcesses     bool
	}{
		"plain transfer": {
			msg:       TransferMsg{QueryID: 1, Owner: alice, Destination: bob, Amount: 30},
			wantAlice: 70,
			wantBob:   30,
		},
		"transfer with notification and excesses": {
			msg: TransferMsg{
				QueryID:             2,
				Owner:               alice,
				Destination:         bob,
				Amount:              100,
				ResponseDestination: resp,
				ForwardAmount:       coin.NewCoinp(0, 50000000, "TON"),
				ForwardPayload:      []byte("hi"),
			},
			wantAlice:        0,
			wantBob:          100,
			wantNotification: true,
			wantExcesses:     true,
		},
		"insufficient tokens": {
			msg:       TransferMsg{QueryID: 3, Owner: alice, Destination: bob, Amount: 101},
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: 100,
		},
		"insufficient forward amount": {
			msg: TransferMsg{
				QueryID:       4,
				Owner:         alice,
				Destination:   bob,
				Amount:        1,
				ForwardAmount: coin.NewCoinp(100, 0, "TON"),
			},
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: 100,
		},
		"unknown master": {
			msg:       TransferMsg{QueryID: 5, Master: weavetest.NewCondition().Address(), Owner: alice, Destination: bob, Amount: 1},
			wantErr:   errors.ErrNotFound,
			wantAlice: 100,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			cashCtrl := cash.NewController(cash.NewBucket())
			require.NoError(t, cashCtrl.IssueCoins(db, alice, coin.NewCoin(1, 0, "TON")))
			cron := &weavetest.Cron{}
			ctrl := NewController(cashCtrl, cron)

			master, err := ctrl.CreateMinter(db, admin, "ipfs://token", code)
			require.NoError(t, err)
			require.NoError(t, ctrl.Mint(db, master, alice, 100))

			msg := tc.msg
			if msg.Master == nil {
				msg.Master = master
			}

			cache := db.CacheWrap()
			err = ctrl.Transfer(weavetest.Ctx(1, now), cache, &msg)
			require.True(t, tc.wantErr.Is(err), "got %v", err)
			if err == nil {
				require.NoError(t, cache.Write())
			} else {
				cache.Discard()
			}

			got, err := ctrl.Balance(db, master, alice)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, master, bob)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)

			var notified, excessed bool
			for _, task := range cron.Tasks() {
				switch m := task.Msg.(type) {
				case *TransferNotificationMsg:
					notified = true
					assert.Equal(t, []weave.Condition{WalletCondition(master, bob, code)}, task.Auth)
					assert.Equal(t, msg.Amount, m.Amount)
					assert.Equal(t, alice, m.Sender)
					assert.Equal(t, []byte("hi"), m.ForwardPayload)
				case *ExcessesMsg:
					excessed = true
					assert.Equal(t, []weave.Condition{WalletCondition(master, alice, code)}, task.Auth)
					assert.Equal(t, resp, m.Recipient)
					assert.Equal(t, msg.QueryID, m.QueryID)
				}
			}
			assert.Equal(t, tc.wantNotification, notified)
			assert.Equal(t, tc.wantExcesses, excessed)

			if tc.wantNotification {
				bal, err := cashCtrl.Balance(db, bob)
				require.NoError(t, err)
				assert.Equal(t, *msg.ForwardAmount, bal.Get("TON"))
			}
		})
	}
}

func TestTransferBounce(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	msg := &TransferMsg{
		QueryID:     42,
		Master:      weavetest.NewCondition().Address(),
		Owner:       owner,
		Destination: weavetest.NewCondition().Address(),
		Amount:      7,
	}
	bounce := msg.BounceMsg(errors.Wrap(errors.ErrInsufficientAmount, "balance 0"))
	failed, ok := bounce.(*TransferFailedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(42), failed.QueryID)
	assert.Equal(t, owner, failed.Owner)
	assert.Equal(t, uint64(7), failed.Amount)
	assert.Contains(t, failed.Reason, "insufficient amount")
	assert.NoError(t, failed.Validate())
}
