package app

import (
	"fmt"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// deliverOrError returns an abci response for DeliverTx, converting the
// error message if present, or using the successful DeliverResult.
func deliverOrError(res *weave.DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return deliverTxError(err, debug)
	}
	return abci.ResponseDeliverTx{
		Data:    res.Data,
		Log:     res.Log,
		Tags:    res.Tags,
		GasUsed: res.GasUsed,
	}
}

// checkOrError returns an abci response for CheckTx, converting the error
// message if present, or using the successful CheckResult.
func checkOrError(res *weave.CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return checkTxError(err, debug)
	}
	return abci.ResponseCheckTx{
		Data:      res.Data,
		Log:       res.Log,
		GasWanted: res.GasAllocated,
	}
}

// deliverTxError converts any error into an abci.ResponseDeliverTx. Escrow
// exit codes such as 501 and 502 are passed through unchanged.
func deliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = fmt.Sprintf("cannot deliver tx: %s", log)
	}
	return abci.ResponseDeliverTx{
		Code: code,
		Log:  log,
	}
}

func checkTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = fmt.Sprintf("cannot check tx: %s", log)
	}
	return abci.ResponseCheckTx{
		Code: code,
		Log:  log,
	}
}

func queryError(err error, debug bool) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseQuery{
		Code: code,
		Log:  log,
	}
}
