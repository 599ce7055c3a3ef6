package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()
	require.NoError(t, pub.Validate())

	msg := []byte("approve deal")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)

	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("refund deal"), sig))
	assert.False(t, GenPrivKeyEd25519().PublicKey().Verify(msg, sig))
	assert.False(t, pub.Verify(msg, nil))
}

func TestCondition(t *testing.T) {
	priv, err := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	pub := priv.PublicKey()

	ext, typ, data, err := pub.Condition().Parse()
	require.NoError(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, TypeEd25519, typ)
	assert.Equal(t, pub.Ed25519, data)
	assert.Equal(t, pub.Condition().Address(), pub.Address())
}

func TestDeriveAccount(t *testing.T) {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	first, err := DeriveAccount(seed, 0)
	require.NoError(t, err)
	again, err := DeriveAccount(seed, 0)
	require.NoError(t, err)
	second, err := DeriveAccount(seed, 1)
	require.NoError(t, err)

	assert.True(t, first.PublicKey().Equals(again.PublicKey()))
	assert.False(t, first.PublicKey().Equals(second.PublicKey()))
	assert.Equal(t, "m/44'/234'/1'", AccountPath(1))

	_, err = DeriveKey(seed, "not a path")
	assert.Error(t, err)
}
