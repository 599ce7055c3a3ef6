package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/escrowd/errors"
)

// mergeIterator combines the snapshot of a cache layer with the iterator of
// the store below it. Cached entries overwrite parent entries with the same
// key and deleted entries hide them.
type mergeIterator struct {
	items     []btree.Item
	parent    Iterator
	ascending bool

	// parent head, loaded lazily
	pkey, pvalue []byte
	ploaded      bool
	pdone        bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []btree.Item, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
}

func (m *mergeIterator) loadParent() error {
	if m.ploaded || m.pdone {
		return nil
	}
	key, value, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.pdone = true
		return nil
	case err != nil:
		return err
	}
	m.pkey, m.pvalue, m.ploaded = key, value, true
	return nil
}

func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.loadParent(); err != nil {
			return nil, nil, err
		}
		if len(m.items) == 0 {
			if !m.ploaded {
				return nil, nil, errors.ErrIteratorDone
			}
			m.ploaded = false
			return m.pkey, m.pvalue, nil
		}

		head := m.items[0]
		hkey := head.(keyer).Key()
		if m.ploaded {
			cmp := bytes.Compare(hkey, m.pkey)
			parentFirst := (m.ascending && cmp > 0) || (!m.ascending && cmp < 0)
			if parentFirst {
				m.ploaded = false
				return m.pkey, m.pvalue, nil
			}
			if cmp == 0 {
				// Cache overwrites the parent value.
				m.ploaded = false
			}
		}

		m.items = m.items[1:]
		switch t := head.(type) {
		case setItem:
			return t.key, t.value, nil
		case deletedItem:
			continue
		default:
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", t)
		}
	}
}

func (m *mergeIterator) Release() {
	m.items = nil
	m.parent.Release()
}

// SliceIterator iterates over a precomputed list of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates an iterator over the given models, in the order
// given.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

func (s *SliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

func (s *SliceIterator) Release() {
	s.data = nil
}

// EmptyKVStore holds no data. It is used as the bottom layer of a MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has(key []byte) (bool, error)   { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error    { return nil }
func (EmptyKVStore) Delete(key []byte) error        { return nil }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}
