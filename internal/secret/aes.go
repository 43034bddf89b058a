package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	aesKeyLen        = 32
)

// keySalt is fixed so that the same passphrase always derives the same key;
// per-value randomness comes from the GCM nonce.
var keySalt = []byte("bank-backoffice.secret.v1")

// AESGCM encrypts field values with AES-256-GCM under a key derived from a
// passphrase via PBKDF2/SHA-256. Output is base64 of nonce||ciphertext, so
// it still fits the one-line-per-record file format. Opt-in replacement for
// Caesar; switching schemes requires running cmd/secret_migrations first.
type AESGCM struct {
	key []byte
}

func NewAESGCM(passphrase string) *AESGCM {
	return &AESGCM{
		key: pbkdf2.Key([]byte(passphrase), keySalt, pbkdf2Iterations, aesKeyLen, sha256.New),
	}
}

func (a *AESGCM) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (a *AESGCM) Encrypt(plain string) string {
	aead, err := a.aead()
	if err != nil {
		// key length is fixed at construction, so this cannot fail
		panic(err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		panic(fmt.Errorf("read nonce: %w", err))
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawStdEncoding.EncodeToString(sealed)
}

func (a *AESGCM) Decrypt(stored string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	aead, err := a.aead()
	if err != nil {
		return "", err
	}
	ns := aead.NonceSize()
	if len(data) < ns {
		return "", fmt.Errorf("secret too short")
	}
	plain, err := aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}
	return string(plain), nil
}
