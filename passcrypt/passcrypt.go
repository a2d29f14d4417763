// Package passcrypt decrypts client-submitted password ciphertexts. The wire
// format is base64(nonce || AES-256-GCM sealed box); the symmetric key is
// SHA-256 of an operator-chosen secret so deployments can configure a secret
// of arbitrary length. When transport encryption is disabled the submitted
// value passes through unchanged, which keeps older clients working.
package passcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NonceSize is the byte length of the GCM nonce prefixed to every ciphertext.
const NonceSize = 12

var (
	// ErrKeyUnset is an exported constant or variable used by the portal engine.
	ErrKeyUnset = errors.New("password crypto secret not configured")
	// ErrInvalidCiphertext is an exported constant or variable used by the portal engine.
	ErrInvalidCiphertext = errors.New("invalid password ciphertext")
	// ErrDecryptFailed is an exported constant or variable used by the portal engine.
	ErrDecryptFailed = errors.New("password ciphertext authentication failed")
)

// Decryptor holds the derived AEAD key. Construct once, share freely; it is
// immutable after [New].
type Decryptor struct {
	enabled bool
	key     [sha256.Size]byte
	haveKey bool
}

// New derives the symmetric key from the configured secret. A disabled
// decryptor passes plaintext through and never touches the key.
func New(enabled bool, secret string) *Decryptor {
	d := &Decryptor{enabled: enabled}
	if strings.TrimSpace(secret) != "" {
		d.key = sha256.Sum256([]byte(secret))
		d.haveKey = true
	}
	return d
}

// Enabled reports whether transport decryption is active.
func (d *Decryptor) Enabled() bool {
	return d != nil && d.enabled
}

// Decrypt opens a client-submitted ciphertext. With encryption disabled the
// fallback is returned unchanged. Error classes matter to callers: malformed
// input reports [ErrInvalidCiphertext] or [ErrKeyUnset], a failed
// authentication tag reports [ErrDecryptFailed]. The plaintext is never part
// of any returned error.
func (d *Decryptor) Decrypt(ciphertextBase64, plaintextFallback string) (string, error) {
	if !d.Enabled() {
		return plaintextFallback, nil
	}
	if !d.haveKey {
		return "", ErrKeyUnset
	}
	if strings.TrimSpace(ciphertextBase64) == "" {
		return "", fmt.Errorf("%w: empty ciphertext", ErrInvalidCiphertext)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(raw) <= NonceSize {
		return "", fmt.Errorf("%w: ciphertext shorter than nonce", ErrInvalidCiphertext)
	}

	aead, err := d.aead()
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// Encrypt seals a plaintext with a fresh random nonce. Peers submitting
// encrypted passwords use the same construction; the engine itself only
// decrypts.
func (d *Decryptor) Encrypt(plaintext string) (string, error) {
	if d == nil || !d.haveKey {
		return "", ErrKeyUnset
	}

	aead, err := d.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (d *Decryptor) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(d.key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
