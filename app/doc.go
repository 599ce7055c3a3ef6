/*
Package app wires escrowd extensions into an ABCI application.

StoreApp keeps the committed iavl state together with the check and deliver
caches and answers queries. BaseApp embeds it and dispatches transactions
through a decorator chain into a Router.
*/
package app
