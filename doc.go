/*
Package weave defines the common interfaces used to put together the escrow
ledger: messages and transactions, handlers and decorators, stores, queries,
genesis initializers and the delayed execution scheduler.

Concrete implementations live in the subpackages. The app package assembles
them into an ABCI application, the x/ packages contain the extensions (cash,
sigs, cron, jetton, escrow) and the store package provides the key value
storage.
*/
package weave
