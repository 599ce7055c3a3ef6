package orm

import (
	"bytes"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// uniqueIndex maps an index key to exactly one primary key.
type uniqueIndex struct {
	prefix  []byte
	indexer Indexer
}

func (u uniqueIndex) dbKey(key []byte) []byte {
	return append(append([]byte{}, u.prefix...), key...)
}

func (u uniqueIndex) lookup(db weave.ReadOnlyKVStore, key []byte) ([]byte, error) {
	pk, err := db.Get(u.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return pk, nil
}

// update moves the index entry of the primary key from the prev model index
// key to the next model index key. Either model may be nil.
func (u uniqueIndex) update(db weave.KVStore, pk []byte, prev, next Model) error {
	var prevKey, nextKey []byte
	var err error
	if prev != nil {
		if prevKey, err = u.indexer(prev); err != nil {
			return err
		}
	}
	if next != nil {
		if nextKey, err = u.indexer(next); err != nil {
			return err
		}
	}
	if bytes.Equal(prevKey, nextKey) {
		return nil
	}
	if prevKey != nil {
		if err := db.Delete(u.dbKey(prevKey)); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	if nextKey == nil {
		return nil
	}
	owner, err := u.lookup(db, nextKey)
	if err != nil {
		return err
	}
	if owner != nil && !bytes.Equal(owner, pk) {
		return errors.Wrapf(errors.ErrDuplicate, "index key %X", nextKey)
	}
	if err := db.Set(u.dbKey(nextKey), pk); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
