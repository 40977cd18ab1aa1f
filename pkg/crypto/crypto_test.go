package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptRequiresKey(t *testing.T) {
	encryptionKey = nil

	_, err := Encrypt("secret")
	assert.ErrorIs(t, err, ErrKeyNotSet)
	assert.False(t, IsKeySet())
}

func TestSetEncryptionKeyValidation(t *testing.T) {
	assert.Error(t, SetEncryptionKey(""))
	assert.Error(t, SetEncryptionKey("too short"))
	assert.NoError(t, SetEncryptionKey("a-storage-encryption-key-of-32-chars"))
	assert.True(t, IsKeySet())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	require.NoError(t, SetEncryptionKey("a-storage-encryption-key-of-32-chars"))

	sealed, err := Encrypt(`{"idToken":"token"}`)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "token")

	plaintext, err := Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"idToken":"token"}`, plaintext)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	require.NoError(t, SetEncryptionKey("a-storage-encryption-key-of-32-chars"))

	_, err := Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}
