package orm

import (
	"reflect"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup is
	// done by the primary key. Result is loaded into given destination
	// model. ErrNotFound is returned if the entity does not exist.
	One(db weave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound otherwise.
	Has(db weave.ReadOnlyKVStore, key []byte) error

	// ByIndex loads the model referenced by the unique index key into the
	// destination and returns its primary key.
	ByIndex(db weave.ReadOnlyKVStore, indexName string, key []byte, dest Model) ([]byte, error)

	// Put saves given model in the database. When key is nil, a new
	// primary key is generated from the bucket sequence. The key used is
	// returned.
	Put(db weave.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db weave.KVStore, key []byte) error

	// Register the bucket content and its indexes for queries under
	// /<name> and /<name>/<index>.
	Register(name string, r weave.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithUniqueIndex configures the bucket to maintain a unique index with the
// given name. Put fails with ErrDuplicate when another model already uses
// the index key.
func WithUniqueIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.indexes[name] = uniqueIndex{
			prefix:  []byte("_i." + mb.name + "_" + name + ":"),
			indexer: indexer,
		}
	}
}

// NewModelBucket returns a ModelBucket storing models of the same type as
// the given example under the name prefix.
func NewModelBucket(name string, example Model, opts ...ModelBucketOption) ModelBucket {
	tp := reflect.TypeOf(example)
	if tp.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   tp.Elem(),
		seq:     NewSequence(name, "id"),
		indexes: make(map[string]uniqueIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	seq     Sequence
	indexes map[string]uniqueIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model).Interface().(Model)
}

func (mb *modelBucket) One(db weave.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot decode %s: %s", mb.name, err)
	}
	return nil
}

func (mb *modelBucket) Has(db weave.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db weave.ReadOnlyKVStore, indexName string, key []byte, dest Model) ([]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "%s has no index %q", mb.name, indexName)
	}
	pk, err := idx.lookup(db, key)
	if err != nil {
		return nil, err
	}
	if pk == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s by %s %X", mb.name, indexName, key)
	}
	if err := mb.One(db, pk, dest); err != nil {
		return nil, err
	}
	return pk, nil
}

func (mb *modelBucket) Put(db weave.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		next, err := mb.seq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "cannot acquire key")
		}
		key = next
	}

	var prev Model
	if len(mb.indexes) > 0 {
		prev = mb.newModel()
		switch err := mb.One(db, key, prev); {
		case errors.ErrNotFound.Is(err):
			prev = nil
		case err != nil:
			return nil, err
		}
	}
	for name, idx := range mb.indexes {
		if err := idx.update(db, key, prev, m); err != nil {
			return nil, errors.Wrapf(err, "index %s", name)
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot encode %s: %s", mb.name, err)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

func (mb *modelBucket) Delete(db weave.KVStore, key []byte) error {
	prev := mb.newModel()
	if err := mb.One(db, key, prev); err != nil {
		return err
	}
	for name, idx := range mb.indexes {
		if err := idx.update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "index %s", name)
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) Register(name string, r weave.QueryRouter) {
	r.Register("/"+name, prefixQuery{prefix: mb.prefix})
	for iname, idx := range mb.indexes {
		r.Register("/"+name+"/"+iname, indexQuery{bucket: mb, index: idx})
	}
}
