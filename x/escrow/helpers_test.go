package escrow

import (
	"testing"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/x"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/cron"
	"github.com/iov-one/escrowd/x/jetton"
	"github.com/stretchr/testify/require"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/common"
)

var now = time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC)

const ticker = "TON"

// ton returns a native coin with the given amount of nanos.
func ton(nanos uint64) coin.Coin {
	c, err := coin.FromNanos(nanos, ticker)
	if err != nil {
		panic(err)
	}
	return c
}

func tagPair(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}

// router dispatches messages to the registered handlers by their path.
type router map[string]weave.Handler

var _ weave.Handler = router(nil)

func (r router) Handle(m weave.Msg, h weave.Handler) {
	r[m.Path()] = h
}

func (r router) handler(tx weave.Tx) (weave.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	h, ok := r[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", msg.Path())
	}
	return h, nil
}

func (r router) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

func (r router) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

// testEnv wires the escrow together with the native and token ledgers and
// the scheduler, the way the application does.
type testEnv struct {
	t         testing.TB
	db        weave.CacheableKVStore
	auth      *weavetest.CtxAuth
	rt        router
	cash      cash.Controller
	jetton    *jetton.Controller
	ctrl      *Controller
	ticker    *cron.Ticker
	collector weave.Address
	height    int64
	blockTime time.Time
}

func newTestEnv(t testing.TB, conf Configuration) *testEnv {
	t.Helper()

	cdc := amino.NewCodec()
	cdc.RegisterInterface((*weave.Msg)(nil), nil)
	jetton.RegisterCodec(cdc)
	RegisterCodec(cdc)
	enc := cron.NewAminoTaskMarshaler(cdc)
	scheduler := cron.NewScheduler(enc)

	env := &testEnv{
		t:         t,
		db:        store.MemStore(),
		auth:      &weavetest.CtxAuth{Key: "auth"},
		rt:        make(router),
		cash:      cash.NewController(cash.NewBucket()),
		collector: conf.Collector,
		height:    1,
		blockTime: now,
	}
	env.jetton = jetton.NewController(env.cash, scheduler)
	env.ctrl = NewController(env.cash, env.jetton, scheduler)
	env.ticker = cron.NewTicker(env.rt, enc, scheduler)

	auth := x.ChainAuth(env.auth, cron.Authenticator{})
	jetton.RegisterRoutes(env.rt, auth, env.jetton)
	RegisterRoutes(env.rt, auth, env.ctrl)

	require.NoError(t, gconf.Save(env.db, confPkg, &conf))
	return env
}

func (env *testEnv) ctx(signers ...weave.Condition) weave.Context {
	return env.auth.SetConditions(weavetest.Ctx(env.height, env.blockTime), signers...)
}

// deliver executes the message within the current block.
func (env *testEnv) deliver(msg weave.Msg, signers ...weave.Condition) (*weave.DeliverResult, error) {
	tx := &weavetest.Tx{Msg: msg}
	if _, err := env.rt.Check(env.ctx(signers...), env.db, tx); err != nil {
		return nil, err
	}
	return env.rt.Deliver(env.ctx(signers...), env.db, tx)
}

// nextBlock moves to the next block and executes all scheduled tasks that
// are due.
func (env *testEnv) nextBlock() []common.KVPair {
	env.height++
	env.blockTime = env.blockTime.Add(5 * time.Second)
	return env.ticker.Tick(env.ctx(), env.db).Tags
}

func (env *testEnv) issue(to weave.Address, amount coin.Coin) {
	env.t.Helper()
	require.NoError(env.t, env.cash.IssueCoins(env.db, to, amount))
}

func (env *testEnv) balance(addr weave.Address) coin.Coin {
	env.t.Helper()
	coins, err := env.cash.Balance(env.db, addr)
	require.NoError(env.t, err)
	return coins.Get(ticker)
}

func (env *testEnv) tokens(master, owner weave.Address) uint64 {
	env.t.Helper()
	n, err := env.jetton.Balance(env.db, master, owner)
	require.NoError(env.t, err)
	return n
}

func testConfiguration() Configuration {
	return Configuration{
		Collector:     weavetest.NewCondition().Address(),
		NativeTicker:  ticker,
		ProcessingFee: ton(1000000),
		ForwardFee:    ton(5000000),
	}
}
