package domain

import (
	"fmt"
	"strings"

	apperrors "studydash/internal/platform/errors"
)

const (
	KeySize = 32
	TagSize = 16

	DemoMessage = "Hello! How are you today?"
)

type Cipher string

const (
	CipherAESGCM   Cipher = "aes-256-gcm"
	CipherChaCha20 Cipher = "chacha20-poly1305"
)

func ParseCipher(raw string) (Cipher, error) {
	switch Cipher(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CipherAESGCM:
		return CipherAESGCM, nil
	case CipherChaCha20:
		return CipherChaCha20, nil
	}
	return "", fmt.Errorf("%w: unknown cipher %q", apperrors.ErrInvalidInput, raw)
}

// Envelope is a sealed message laid out as nonce | tag | ciphertext.
type Envelope []byte

func (e Envelope) Split(nonceSize int) (nonce, tag, ciphertext []byte, err error) {
	if len(e) < nonceSize+TagSize {
		return nil, nil, nil, fmt.Errorf("%w: %d bytes is shorter than nonce and tag", apperrors.ErrInvalidEnvelope, len(e))
	}
	return e[:nonceSize], e[nonceSize : nonceSize+TagSize], e[nonceSize+TagSize:], nil
}

func JoinEnvelope(nonce, tag, ciphertext []byte) Envelope {
	out := make([]byte, 0, len(nonce)+len(tag)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, tag...)
	return append(out, ciphertext...)
}
