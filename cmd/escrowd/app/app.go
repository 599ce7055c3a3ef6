/*
Package app links together all the extensions to construct the escrowd
application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/app"
	"github.com/iov-one/escrowd/commands/server"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store/iavl"
	"github.com/iov-one/escrowd/x"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/cron"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/jetton"
	"github.com/iov-one/escrowd/x/sigs"
	"github.com/iov-one/escrowd/x/utils"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Name is returned by abci Info.
const Name = "escrowd"

// Authenticator returns the authentication used by all handlers: public key
// signatures for transactions and the stored conditions for scheduled
// tasks.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, cron.Authenticator{})
}

// Chain returns a chain of decorators, to handle authentication, fees,
// logging, and recovery.
func Chain(authFn x.Authenticator, cashctrl cash.Controller) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		cash.NewFeeDecorator(authFn, cashctrl),
		// on DeliverTx, bad tx will increment the nonce and take the fee
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	)
}

// Router returns a router dispatching to all extensions. Escrow and jetton
// transfers are delayed through the given scheduler.
func Router(authFn x.Authenticator, cashctrl cash.Controller, scheduler weave.Scheduler) *app.Router {
	r := app.NewRouter()
	jettons := jetton.NewController(cashctrl, scheduler)
	sigs.RegisterRoutes(r, authFn)
	cash.RegisterRoutes(r, authFn, cashctrl)
	jetton.RegisterRoutes(r, authFn, jettons)
	escrow.RegisterRoutes(r, authFn, escrow.NewController(cashctrl, jettons, scheduler))
	return r
}

// QueryRouter returns a default query router, allowing access to
// "/wallets", "/auth", "/minters", "/jettonwallets", "/escrows" and
// "/crontaskresults".
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		jetton.RegisterQuery,
		escrow.RegisterQuery,
		cron.RegisterQuery,
	)
	return r
}

// Stack wires up the transaction handler and the ticker executing scheduled
// tasks. Scheduled tasks skip signature and fee checks, their
// authentication comes from the conditions stored with the task.
func Stack() (weave.Handler, weave.Ticker) {
	authFn := Authenticator()
	cashctrl := cash.NewController(cash.NewBucket())
	enc := cron.NewAminoTaskMarshaler(cdc)
	scheduler := cron.NewScheduler(enc)

	router := Router(authFn, cashctrl, scheduler)
	tasks := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
	).WithHandler(router)

	return Chain(authFn, cashctrl).WithHandler(router), cron.NewTicker(tasks, enc, scheduler)
}

// Application constructs a basic ABCI application with the given
// arguments.
func Application(name string, h weave.Handler, ticker weave.Ticker, tx weave.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, errors.Wrap(err, "cannot create database instance")
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	base := app.NewBaseApp(store, tx, h, ticker, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists the data to
// the named path. An empty path means an in-memory store.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidentally add a ".db", which is removed.
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}

// Initializers returns the genesis loaders of all extensions. Token
// masters are created before the escrows that reference them.
func Initializers() weave.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		jetton.Initializer{},
		escrow.Initializer{},
	)
}

// GenerateApp is used to create a stub for server/start.go command.
func GenerateApp(options *server.Options) (abci.Application, error) {
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "abci.db")
	}

	h, ticker := Stack()
	application, err := Application(Name, h, ticker, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())
	application.WithLogger(options.Logger)
	return application, nil
}
