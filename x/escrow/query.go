package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// RegisterQuery registers escrows under /escrows, their address index
// under /escrows/address and the getter view under /escrows/getters.
func RegisterQuery(qr weave.QueryRouter) {
	bucket := NewBucket()
	bucket.Register("escrows", qr)
	qr.Register("/escrows/getters", gettersQuery{ctrl: &Controller{bucket: bucket}})
}

// gettersQuery returns the getter view of the escrow with the id given as
// the query data.
type gettersQuery struct {
	ctrl *Controller
}

func (q gettersQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported mod: %s", mod)
	}
	g, err := q.ctrl.Getters(db, data)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	raw, err := g.Marshal()
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return []weave.Model{weave.Pair(data, raw)}, nil
}
