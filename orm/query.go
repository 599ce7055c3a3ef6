package orm

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// prefixQuery serves models stored under a bucket prefix. The key query
// returns a single model, the prefix query all models whose primary key
// starts with the given data.
type prefixQuery struct {
	prefix []byte
}

func (q prefixQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	key := append(append([]byte{}, q.prefix...), data...)
	switch mod {
	case weave.KeyQueryMod:
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		return []weave.Model{weave.Pair(key, val)}, nil
	case weave.PrefixQueryMod:
		return queryPrefix(db, key)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

func queryPrefix(db weave.ReadOnlyKVStore, prefix []byte) ([]weave.Model, error) {
	it, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []weave.Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, weave.Pair(key, value))
	}
}

// prefixEnd returns the first key that does not start with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// indexQuery serves a model by its unique index key.
type indexQuery struct {
	bucket *modelBucket
	index  uniqueIndex
}

func (q indexQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported mod: %s", mod)
	}
	pk, err := q.index.lookup(db, data)
	if err != nil || pk == nil {
		return nil, err
	}
	key := q.bucket.dbKey(pk)
	val, err := db.Get(key)
	if err != nil || val == nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(key, val)}, nil
}
