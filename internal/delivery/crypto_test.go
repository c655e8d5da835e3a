package delivery

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, keyLength)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

func TestEncryptDecryptToken(t *testing.T) {
	key := testKey(t)

	enc, err := EncryptToken("1//refresh-token", key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	assert.Len(t, raw, ivLength+tagLength+len("1//refresh-token"))

	dec, err := DecryptToken(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "1//refresh-token", dec)
}

func TestDecryptToken_Failures(t *testing.T) {
	key := testKey(t)
	enc, err := EncryptToken("secret", key)
	require.NoError(t, err)

	raw, _ := base64.StdEncoding.DecodeString(enc)
	raw[ivLength] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		data string
		key  string
	}{
		{"wrong key", enc, testKey(t)},
		{"tampered tag", tampered, key},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short")), key},
		{"not base64", "!!!", key},
		{"short key", enc, base64.StdEncoding.EncodeToString([]byte("16-byte-key-0000"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptToken(tt.data, tt.key)
			var delivErr *Error
			assert.True(t, errors.As(err, &delivErr))
		})
	}
}

func TestResolveRefreshToken(t *testing.T) {
	plain, err := ResolveRefreshToken("plain-token", "")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", plain)

	key := testKey(t)
	enc, err := EncryptToken("stored-token", key)
	require.NoError(t, err)
	got, err := ResolveRefreshToken(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "stored-token", got)
}
