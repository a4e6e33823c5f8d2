package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Crypt encrypts photos at rest with AES-GCM, keyed from a passphrase.
type Crypt struct {
	gcm cipher.AEAD
}

func New(passphrase string) (*Crypt, error) {
	dk := pbkdf2.Key([]byte(passphrase), nil, 4096, 32, sha1.New)

	c, err := aes.NewCipher(dk)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &Crypt{gcm: gcm}, nil
}

func (c *Crypt) Encrypt(input io.Reader) (io.ReadSeeker, error) {
	// The nonce needs to be unique, not secret. It must not be reused
	// for more than 64GB of data under the same key.
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	plainText, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}

	cipherText := c.gcm.Seal(nil, nonce, plainText, nil)

	out := make([]byte, 0, len(nonce)+len(cipherText))
	out = append(out, nonce...)
	out = append(out, cipherText...)
	return bytes.NewReader(out), nil
}

func (c *Crypt) Decrypt(input io.Reader) (io.ReadSeeker, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(input, nonce); err != nil {
		return nil, err
	}

	cipherText, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}

	plainText, err := c.gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(plainText), nil
}
