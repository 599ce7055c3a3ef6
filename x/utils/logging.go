package utils

import (
	"time"

	"github.com/iov-one/escrowd"
)

// Logging is a decorator that writes a single log entry for every processed
// transaction. Failures are logged as errors. Successful checks are logged
// at debug level and successful deliveries at info level.
type Logging struct{}

var _ weave.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var info string
	if err == nil {
		info = res.Log
	}
	logResult(ctx, tx, start, info, err, true)
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var info string
	if err == nil {
		info = res.Log
	}
	logResult(ctx, tx, start, info, err, false)
	return res, err
}

func logResult(ctx weave.Context, tx weave.Tx, start time.Time, info string, err error, check bool) {
	logger := weave.GetLogger(ctx).With(
		"path", weave.GetPath(tx),
		"duration_us", time.Since(start)/time.Microsecond,
	)
	switch {
	case err != nil:
		logger.Error(info, "err", err)
	case check:
		logger.Debug(info)
	default:
		logger.Info(info)
	}
}
