// Package secret provides the reversible ciphers applied to sensitive
// record fields (client PINs, admin passwords) at the serialization
// boundary. Stored entity files never contain a secret in the clear.
package secret

import (
	"errors"
	"fmt"
)

var ErrUnknownScheme = errors.New("unknown cipher scheme")

// Cipher encrypts a field value before it is written to a data file and
// decrypts it immediately after reading. Implementations must satisfy
// Decrypt(Encrypt(s)) == s for every input.
type Cipher interface {
	Encrypt(plain string) string
	Decrypt(stored string) (string, error)
}

const DefaultCaesarShift = 2

// Caesar shifts every byte of the value by a fixed offset. This matches the
// historical on-disk format byte for byte, so existing data files keep
// loading. It is obfuscation, not cryptography.
type Caesar struct {
	Shift int
}

func NewCaesar(shift int) Caesar {
	if shift == 0 {
		shift = DefaultCaesarShift
	}
	return Caesar{Shift: shift}
}

func (c Caesar) Encrypt(plain string) string {
	out := []byte(plain)
	for i := range out {
		out[i] = byte(int(out[i]) + c.Shift)
	}
	return string(out)
}

func (c Caesar) Decrypt(stored string) (string, error) {
	out := []byte(stored)
	for i := range out {
		out[i] = byte(int(out[i]) - c.Shift)
	}
	return string(out), nil
}

// FromConfig builds the cipher named by scheme. Supported schemes are
// "caesar" (default when scheme is empty) and "aesgcm".
func FromConfig(scheme string, shift int, passphrase string) (Cipher, error) {
	switch scheme {
	case "", "caesar":
		return NewCaesar(shift), nil
	case "aesgcm":
		if passphrase == "" {
			return nil, errors.New("aesgcm cipher requires a passphrase")
		}
		return NewAESGCM(passphrase), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}
