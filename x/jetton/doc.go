/*
Package jetton implements fungible tokens.

A token is defined by its master (minter) that keeps the admin, the total
supply and the wallet program. Balances are kept in per owner wallets. The
address of a wallet is derived from the master, the owner and the wallet
program, so anyone can compute where the tokens of a given owner are held.

A transfer debits the wallet of the sender and credits the wallet of the
destination owner. When a forward amount is attached, the destination owner
is notified with a TransferNotificationMsg. When a response destination is
set, it receives an ExcessesMsg confirming the transfer. Both are delivered
asynchronously through the scheduler and authenticated with the condition
of the wallet that sends them. A transfer executed as a scheduled task that
fails bounces back to its owner as a TransferFailedMsg.
*/
package jetton
