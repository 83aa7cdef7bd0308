package secure

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// DefaultWorkFactor keeps scrypt cheap enough to run on every draft edit.
const DefaultWorkFactor = 10

// PassphraseCipher seals payloads as ASCII-armored age files using a shared
// passphrase. The age header carries the format version, so a payload written by
// one release remains readable by the next.
//
// A passphrase shipped with the service obscures drafts at rest; it does not make
// them confidential against anyone holding the configuration.
type PassphraseCipher struct {
	passphrase string
	workFactor int
}

// NewPassphraseCipher builds a cipher. workFactor <= 0 selects DefaultWorkFactor.
func NewPassphraseCipher(passphrase string, workFactor int) (*PassphraseCipher, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if workFactor <= 0 {
		workFactor = DefaultWorkFactor
	}
	if workFactor > 22 {
		return nil, fmt.Errorf("work factor %d exceeds decryptable maximum", workFactor)
	}
	return &PassphraseCipher{passphrase: passphrase, workFactor: workFactor}, nil
}

// Seal encrypts plaintext and returns the armored ciphertext.
func (c *PassphraseCipher) Seal(plaintext []byte) (string, error) {
	recipient, err := age.NewScryptRecipient(c.passphrase)
	if err != nil {
		return "", fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(c.workFactor)

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)
	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return "", fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("encrypting payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return "", fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.String(), nil
}

// Open decrypts an armored ciphertext produced by Seal.
func (c *PassphraseCipher) Open(ciphertext string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(c.passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(ciphertext)), identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting payload: %w", err)
	}
	return plaintext, nil
}
