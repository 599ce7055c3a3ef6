/*
Package orm provides an easy to use db wrapper.

Models are persisted in a ModelBucket under a name prefixed key. A bucket may
declare unique secondary indexes, that are kept up to date on every Put and
Delete, and can be registered in the query router so that models are
available to the clients.

Sequence provides monotonically increasing identifiers.
*/
package orm
