package app

import (
	"context"
	"testing"

	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	var (
		good = &weavetest.Msg{RoutePath: "escrow/approve"}
		bad  = &weavetest.Msg{RoutePath: "escrow/refund"}
		none = &weavetest.Msg{RoutePath: "escrow/unknown"}
	)

	r := NewRouter()
	var counter weavetest.Handler
	r.Handle(good, &counter)
	r.Handle(bad, &weavetest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	})

	assert.Panics(t, func() { r.Handle(good, &counter) }, "path already registered")
	assert.Panics(t, func() { r.Handle(&weavetest.Msg{RoutePath: "l:7"}, &counter) }, "invalid path")

	ctx := context.Background()

	_, err := r.Check(ctx, nil, &weavetest.Tx{Msg: good})
	require.NoError(t, err)
	_, err = r.Deliver(ctx, nil, &weavetest.Tx{Msg: good})
	require.NoError(t, err)
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Deliver(ctx, nil, &weavetest.Tx{Msg: bad})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = r.Check(ctx, nil, &weavetest.Tx{Msg: none})
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Deliver(ctx, nil, &weavetest.Tx{Msg: none})
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(ctx, nil, &weavetest.Tx{Err: errors.ErrInput})
	assert.True(t, errors.ErrInput.Is(err))
	assert.Equal(t, 2, counter.CallCount())
}
