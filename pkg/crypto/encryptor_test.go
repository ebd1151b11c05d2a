package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor_GenerateNewKey(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc.PublicKey(), "age1"))
}

func TestNewEncryptor_WithProvidedKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	a, err := NewEncryptor(key)
	require.NoError(t, err)
	b, err := NewEncryptor(key)
	require.NoError(t, err)

	assert.Equal(t, a.PublicKey(), b.PublicKey())
}

func TestNewEncryptor_InvalidKey(t *testing.T) {
	_, err := NewEncryptor("not-an-age-key")
	assert.Error(t, err)
}

func TestSealField_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	sealed, err := enc.SealField("Jane Doe +1 555 0100")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "Jane")

	opened, err := enc.OpenField(sealed)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe +1 555 0100", opened)
}

func TestSealField_Empty(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	sealed, err := enc.SealField("")
	require.NoError(t, err)
	assert.Nil(t, sealed)

	opened, err := enc.OpenField(nil)
	require.NoError(t, err)
	assert.Equal(t, "", opened)
}

func TestOpenField_WrongKey(t *testing.T) {
	a, err := NewEncryptor("")
	require.NoError(t, err)
	b, err := NewEncryptor("")
	require.NoError(t, err)

	sealed, err := a.SealField("secret")
	require.NoError(t, err)

	_, err = b.OpenField(sealed)
	assert.Error(t, err)
}
