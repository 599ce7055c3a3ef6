/*
Package escrow implements a three party escrow.

> An escrow is a financial arrangement where a third party holds and regulates
> payment of the funds required for two parties involved in a given transaction.

Every escrow settles a single deal between a seller, a buyer and a
guarantor. The deal is paid either in the native currency or in a jetton
token, and the asset kind is fixed when the escrow is deployed.

Anyone can deposit into the escrow address. Deposits are not tracked, the
custody is whatever the ledgers report for the escrow account.

The guarantor decides the outcome. Approve releases the price to the seller,
Refund returns it to the buyer. Whichever comes first wins. The royalty
remaining in custody is later collected by the guarantor, which also
destroys the escrow.

Token transfers are executed asynchronously by the jetton wallet of the
escrow. Their outcome is reported back with an excesses or a bounce message
carrying the same query id.
*/
package escrow
