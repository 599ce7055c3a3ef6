package weavetest

import (
	"context"
	"time"

	"github.com/iov-one/escrowd"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ChainID is used by the test contexts.
const ChainID = "test-chain"

// Ctx returns a context that carries the block header, height and chain
// id, the way the application prepares it for every transaction.
func Ctx(height int64, now time.Time) weave.Context {
	header := abci.Header{
		ChainID: ChainID,
		Height:  height,
		Time:    now.UTC(),
	}
	ctx := weave.WithHeader(context.Background(), header)
	ctx = weave.WithHeight(ctx, height)
	return weave.WithChainID(ctx, ChainID)
}
