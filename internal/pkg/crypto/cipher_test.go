package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("test-secret")
	assert.NoError(t, err)

	ciphertext, err := c.Encrypt("AIzaSyExampleKey123")
	assert.NoError(t, err)
	assert.NotEqual(t, "AIzaSyExampleKey123", ciphertext)

	plain, err := c.Decrypt(ciphertext)
	assert.NoError(t, err)
	assert.Equal(t, "AIzaSyExampleKey123", plain)
}

func TestCipherNonceUnique(t *testing.T) {
	c, err := NewCipher("test-secret")
	assert.NoError(t, err)

	a, err := c.Encrypt("same-plaintext")
	assert.NoError(t, err)
	b, err := c.Encrypt("same-plaintext")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipherRejectsGarbage(t *testing.T) {
	c, err := NewCipher("test-secret")
	assert.NoError(t, err)

	_, err = c.Decrypt("not-base64!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestCipherWrongSecretFails(t *testing.T) {
	c1, err := NewCipher("secret-one")
	assert.NoError(t, err)
	c2, err := NewCipher("secret-two")
	assert.NoError(t, err)

	ciphertext, err := c1.Encrypt("payload")
	assert.NoError(t, err)

	_, err = c2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestCipherRequiresSecret(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
