package sigs

import (
	"testing"

	"github.com/iov-one/escrowd/crypto"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("foo"), "chain-one", 1)
	assert.Nil(t, err)
	b, err := BuildSignBytes([]byte("foo"), "chain-two", 1)
	assert.Nil(t, err)
	c, err := BuildSignBytes([]byte("foo"), "chain-one", 2)
	assert.Nil(t, err)
	if string(a) == string(b) || string(a) == string(c) {
		t.Fatal("sign bytes must depend on the chain and the sequence")
	}
	assert.Equal(t, 64, len(a))

	if _, err := BuildSignBytes([]byte("foo"), "chain-one", -1); !ErrInvalidSequence.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := BuildSignBytes([]byte("foo"), "bad", 1); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifySignatures(t *testing.T) {
	const chainID = "test-chain"
	priv := crypto.GenPrivKeyEd25519()
	priv2 := crypto.GenPrivKeyEd25519()
	db := store.MemStore()

	tx := &signedTx{Payload: []byte("hello")}

	sig0, err := SignTx(priv, tx, chainID, 0)
	assert.Nil(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	assert.Nil(t, err)
	sig2, err := SignTx(priv2, tx, chainID, 0)
	assert.Nil(t, err)

	// Wrong sequence is rejected and nothing is written.
	tx.Signatures = []*StdSignature{sig1}
	if _, err := VerifyTxSignatures(db, tx, chainID); !ErrInvalidSequence.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	tx.Signatures = []*StdSignature{sig0}
	signers, err := VerifyTxSignatures(db, tx, chainID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(signers))
	assert.Equal(t, priv.PublicKey().Condition(), signers[0])

	// Replay is not possible.
	if _, err := VerifyTxSignatures(db, tx, chainID); !ErrInvalidSequence.Is(err) {
		t.Fatalf("replay: unexpected error: %v", err)
	}

	seq, err := NextNonce(db, priv.PublicKey().Address())
	assert.Nil(t, err)
	assert.Equal(t, int64(1), seq)

	tx.Signatures = []*StdSignature{sig1, sig2}
	signers, err = VerifyTxSignatures(db, tx, chainID)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(signers))

	// Signature of a different payload is invalid.
	other := &signedTx{Payload: []byte("other")}
	bad, err := SignTx(priv2, other, chainID, 1)
	assert.Nil(t, err)
	tx.Signatures = []*StdSignature{bad}
	if _, err := VerifyTxSignatures(db, tx, chainID); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	// Signature for a different chain is invalid.
	wrongChain, err := SignTx(priv2, tx, "other-chain", 1)
	assert.Nil(t, err)
	tx.Signatures = []*StdSignature{wrongChain}
	if _, err := VerifyTxSignatures(db, tx, chainID); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	seq, err = NextNonce(db, crypto.GenPrivKeyEd25519().PublicKey().Address())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestCheckAndIncrementSequence(t *testing.T) {
	u := &UserData{Pubkey: crypto.GenPrivKeyEd25519().PublicKey(), Sequence: 5}
	if err := u.CheckAndIncrementSequence(4); !ErrInvalidSequence.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Nil(t, u.CheckAndIncrementSequence(5))
	assert.Equal(t, int64(6), u.Sequence)

	u.Sequence = (1 << 53) - 1
	if err := u.CheckAndIncrementSequence(u.Sequence); !errors.ErrOverflow.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
