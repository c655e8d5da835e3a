package delivery

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Stored tokens are base64(iv | tag | ciphertext) under a base64 encoded 32-byte key.
const (
	ivLength  = 16
	tagLength = 16
	keyLength = 32
)

func newGCM(keyB64 string) (cipher.AEAD, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivLength)
}

// DecryptToken decrypts a stored refresh token.
func DecryptToken(encryptedB64, keyB64 string) (string, error) {
	gcm, err := newGCM(keyB64)
	if err != nil {
		return "", &Error{Message: "invalid encryption key", Cause: err}
	}
	data, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return "", &Error{Message: "token is not valid base64", Cause: err}
	}
	if len(data) < ivLength+tagLength {
		return "", &Error{Message: "token is too short"}
	}

	iv := data[:ivLength]
	tag := data[ivLength : ivLength+tagLength]
	ciphertext := data[ivLength+tagLength:]

	// Open expects the tag after the ciphertext.
	sealed := make([]byte, 0, len(ciphertext)+tagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", &Error{Message: "failed to decrypt token", Cause: err}
	}
	return string(plain), nil
}

// EncryptToken encrypts a refresh token in the layout DecryptToken reads.
func EncryptToken(token, keyB64 string) (string, error) {
	gcm, err := newGCM(keyB64)
	if err != nil {
		return "", &Error{Message: "invalid encryption key", Cause: err}
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", &Error{Message: "failed to generate iv", Cause: err}
	}

	sealed := gcm.Seal(nil, iv, []byte(token), nil)
	ciphertext, tag := sealed[:len(sealed)-tagLength], sealed[len(sealed)-tagLength:]

	out := make([]byte, 0, ivLength+len(sealed))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// ResolveRefreshToken decrypts token when an encryption key is configured and returns it
// unchanged otherwise.
func ResolveRefreshToken(token, keyB64 string) (string, error) {
	if keyB64 == "" {
		return token, nil
	}
	return DecryptToken(token, keyB64)
}
