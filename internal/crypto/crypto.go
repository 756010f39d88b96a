// Package crypto seals the history file at rest.
//
// A 32-byte key is derived from the user's passphrase with Argon2id and a
// random per-file salt, then every blob is encrypted with NaCl secretbox:
//
//	[ 16-byte salt ][ 24-byte nonce ][ ciphertext ]
//
// An empty passphrase means the store does not use this package at all and
// the history is written as plain JSON.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	SaltSize  = 16
	nonceSize = 24

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrOpen is returned when a blob cannot be decrypted: wrong passphrase or
// damaged data.
var ErrOpen = errors.New("decryption failed (wrong passphrase?)")

// Key is a derived secretbox key together with the salt it came from.
type Key struct {
	salt [SaltSize]byte
	key  [KeySize]byte
}

// NewKey derives a key from passphrase with a fresh random salt.
func NewKey(passphrase string) (*Key, error) {
	var salt [SaltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return DeriveKey(passphrase, salt[:])
}

// DeriveKey derives the key for passphrase and salt. Both sides must use the
// same pair to get the same key.
func DeriveKey(passphrase string, salt []byte) (*Key, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	k := &Key{}
	copy(k.salt[:], salt)
	copy(k.key[:], argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize))
	return k, nil
}

// Salt returns the salt the key was derived with.
func (k *Key) Salt() []byte { return k.salt[:] }

// Seal encrypts plaintext and returns salt+nonce+ciphertext.
func (k *Key) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	out := make([]byte, 0, SaltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, k.salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &k.key), nil
}

// SaltOf returns the salt prefix of a sealed blob.
func SaltOf(sealed []byte) ([]byte, error) {
	if len(sealed) < SaltSize+nonceSize {
		return nil, fmt.Errorf("%w: blob too short", ErrOpen)
	}
	return sealed[:SaltSize], nil
}

// Open decrypts a blob produced by Seal with the same passphrase and salt.
func (k *Key) Open(sealed []byte) ([]byte, error) {
	salt, err := SaltOf(sealed)
	if err != nil {
		return nil, err
	}
	if string(salt) != string(k.salt[:]) {
		return nil, fmt.Errorf("%w: salt mismatch", ErrOpen)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[SaltSize:SaltSize+nonceSize])
	plain, ok := secretbox.Open(nil, sealed[SaltSize+nonceSize:], &nonce, &k.key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}
