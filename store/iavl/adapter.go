package iavl

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ weave.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with leveldb backing, kept in the
// given directory.
func NewCommitStore(dir, name string) *CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	return NewCommitStoreFromDB(db)
}

// NewMemCommitStore returns a store backed by an in-memory database. Only
// useful for testing.
func NewMemCommitStore() *CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB creates a store on top of the given database.
func NewCommitStoreFromDB(db dbm.DB) *CommitStore {
	return &CommitStore{
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

// Get returns the value at the last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	version := s.tree.Version()
	if version == 0 {
		return nil, nil
	}
	_, val := s.tree.GetVersioned(key, version)
	return val, nil
}

// Commit the next version to disk, and returns info.
func (s *CommitStore) Commit() (weave.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return weave.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return weave.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. If there was a
// crash during the last commit, it is guaranteed to return a stable state,
// even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (weave.CommitID, error) {
	return weave.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a btree cache on top of the working tree. Writing the
// cache applies all changes to the working tree, that is persisted on the
// next Commit.
func (s *CommitStore) CacheWrap() weave.KVCacheWrap {
	adapter := treeAdapter{tree: s.tree}
	return store.NewBTreeCacheWrap(adapter, store.NewNonAtomicBatch(adapter), nil)
}

// treeAdapter exposes the working tree as a key value store.
type treeAdapter struct {
	tree *iavl.MutableTree
}

var _ weave.ReadOnlyKVStore = treeAdapter{}
var _ weave.SetDeleter = treeAdapter{}

func (a treeAdapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a treeAdapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a treeAdapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

func (a treeAdapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a treeAdapter) Iterator(start, end []byte) (weave.Iterator, error) {
	return a.collect(start, end, true), nil
}

func (a treeAdapter) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	return a.collect(start, end, false), nil
}

// collect reads the range into memory. The tree does not support a pull
// based iterator and a range must not be modified while it is iterated.
func (a treeAdapter) collect(start, end []byte, ascending bool) weave.Iterator {
	var res []weave.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, weave.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
