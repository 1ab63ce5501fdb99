package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := NewEncryptor("unit-test-key")
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("provider-access-token")
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.NotEqual(t, "provider-access-token", ciphertext)

	plain, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "provider-access-token", plain)
}

func TestEncryptorEmptyStringPassesThrough(t *testing.T) {
	enc, err := NewEncryptor("unit-test-key")
	require.NoError(t, err)

	out, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = enc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEncryptorNonceVaries(t *testing.T) {
	enc, err := NewEncryptor("unit-test-key")
	require.NoError(t, err)

	a, err := enc.Encrypt("same-plaintext")
	require.NoError(t, err)
	b, err := enc.Encrypt("same-plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptorRejectsTamperedCiphertext(t *testing.T) {
	enc, err := NewEncryptor("unit-test-key")
	require.NoError(t, err)

	_, err = enc.Decrypt("not-base64!!!")
	require.Error(t, err)

	ciphertext, err := enc.Encrypt("secret")
	require.NoError(t, err)

	other, err := NewEncryptor("different-key")
	require.NoError(t, err)
	_, err = other.Decrypt(ciphertext)
	require.Error(t, err)
}

func TestEncryptorRequiresKey(t *testing.T) {
	_, err := NewEncryptor("")
	require.Error(t, err)
}
