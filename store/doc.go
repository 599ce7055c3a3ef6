/*
Package store provides the key value storage used by the application.

MemStore is an in-memory store backed by a btree. BTreeCacheWrap places a
btree write cache on top of any store and is used to run every transaction
in isolation: writes land in the cache and are flushed to the parent only
when the transaction succeeds. The iavl subpackage provides the persistent,
versioned store used by the node.
*/
package store

import "github.com/iov-one/escrowd"

// Aliases so that users of this package do not need to import the root
// package only for the interfaces.
type (
	ReadOnlyKVStore  = weave.ReadOnlyKVStore
	KVStore          = weave.KVStore
	CacheableKVStore = weave.CacheableKVStore
	KVCacheWrap      = weave.KVCacheWrap
	Batch            = weave.Batch
	Iterator         = weave.Iterator
	Model            = weave.Model
)
