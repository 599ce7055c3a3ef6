package server

import (
	"flag"

	"github.com/iov-one/escrowd/errors"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind  = "bind"
	flagDebug = "debug"
)

// Options are the application options built from the start command flags.
type Options struct {
	Home   string
	Logger log.Logger
	Debug  bool
}

// AppGenerator lets us lazily initialize the app, using the home dir and a
// logger potentially initialized with other flags.
type AppGenerator func(*Options) (abci.Application, error)

type startArgs struct {
	bind  string
	debug bool
}

func parseStartArgs(args []string) (startArgs, error) {
	var res startArgs
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&res.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	fs.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	if err := fs.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// StartCmd initializes the application and serves it over the ABCI socket
// until the process is signalled.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	opts, err := parseStartArgs(args)
	if err != nil {
		return err
	}

	app, err := gen(&Options{
		Home:   home,
		Logger: logger,
		Debug:  opts.debug,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", opts.bind)
	svr, err := server.NewServer(opts.bind, "socket", app)
	if err != nil {
		return errors.Wrap(err, "cannot create listener")
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "cannot start server")
	}

	// The signal handler stops the server and exits the process.
	cmn.TrapSignal(logger, func() {
		if err := svr.Stop(); err != nil {
			logger.Error("Cannot stop ABCI server", "err", err)
		}
	})
	select {}
}
