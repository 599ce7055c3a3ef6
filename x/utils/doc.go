/*
Package utils contains decorators shared by every escrowd handler stack.

They recover panics, log every transaction, isolate failed deliveries and
tag successful ones with the message path.
*/
package utils
