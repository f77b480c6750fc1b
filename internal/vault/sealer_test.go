package vault

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	sealer, err := NewAESSealer("secreto-de-prueba")
	require.NoError(t, err)

	for _, plain := range []string{"4111111111111111", "123", "", "ñandú 🥨"} {
		sealed, err := sealer.Seal(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, sealed)

		opened, err := sealer.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, opened)
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	sealer, err := NewAESSealer("secreto-de-prueba")
	require.NoError(t, err)

	a, err := sealer.Seal("4111111111111111")
	require.NoError(t, err)
	b, err := sealer.Seal("4111111111111111")
	require.NoError(t, err)

	// Mismo plaintext, ciphertext distinto cada vez.
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsTampering(t *testing.T) {
	sealer, err := NewAESSealer("secreto-de-prueba")
	require.NoError(t, err)

	sealed, err := sealer.Seal("4111111111111111")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	_, err = sealer.Open(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpenRejectsGarbage(t *testing.T) {
	sealer, err := NewAESSealer("secreto-de-prueba")
	require.NoError(t, err)

	_, err = sealer.Open("esto no es base64 !!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = sealer.Open(base64.StdEncoding.EncodeToString([]byte("corto")))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	a, err := NewAESSealer("clave-a")
	require.NoError(t, err)
	b, err := NewAESSealer("clave-b")
	require.NoError(t, err)

	sealed, err := a.Seal("dato")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewAESSealerRequiresSecret(t *testing.T) {
	_, err := NewAESSealer("")
	assert.Error(t, err)
}
