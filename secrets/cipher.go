// Package secrets recovers private keys and exchange API credentials
// from the ciphertext stored alongside follower records.
package secrets

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fernet/fernet-go"
)

// Cipher encrypts and decrypts follower secret material.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// FernetCipher implements Cipher with Fernet symmetric tokens, matching
// the ciphertext format stored in the followers table.
type FernetCipher struct {
	key *fernet.Key
}

// NewFernetCipher builds a cipher from a base64 Fernet key.
func NewFernetCipher(encodedKey string) (*FernetCipher, error) {
	key, err := fernet.DecodeKey(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("secrets: decode encryption key: %w", err)
	}
	return &FernetCipher{key: key}, nil
}

// Encrypt produces a Fernet token for the given plaintext.
func (c *FernetCipher) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: encrypt: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and opens a Fernet token. Tokens do not expire.
func (c *FernetCipher) Decrypt(ciphertext string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return "", fmt.Errorf("secrets: invalid ciphertext")
	}
	return string(plaintext), nil
}

// ParsePrivateKey interprets a decrypted signing key as a hex-encoded
// secp256k1 private key, with or without a 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("secrets: parse private key: %w", err)
	}
	return key, nil
}
