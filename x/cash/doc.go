/*
Package cash implements the native currency ledger. Every address may own a
wallet holding a set of coins. Other extensions move value through the
Controller, users through the SendMsg.

The FeeDecorator deducts the transaction fee before the message is
processed and sends it to the collector configured via the gconf package.
*/
package cash
