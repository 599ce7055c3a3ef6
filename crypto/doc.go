/*
Package crypto provides the ed25519 keys used to sign transactions and the
conditions derived from them.

Keys can be generated at random, created from a 32 byte seed, or derived
from a master seed with a BIP-44 style path (SLIP-0010 for ed25519) so that a
single seed can hold many accounts.
*/
package crypto
