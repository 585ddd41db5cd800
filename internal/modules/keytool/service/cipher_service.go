package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"studydash/internal/modules/keytool/domain"
	apperrors "studydash/internal/platform/errors"
)

type CipherService struct {
	random io.Reader
}

func NewCipherService(random io.Reader) *CipherService {
	if random == nil {
		random = rand.Reader
	}
	return &CipherService{random: random}
}

func (s *CipherService) NewKey() ([]byte, error) {
	key := make([]byte, domain.KeySize)
	if _, err := io.ReadFull(s.random, key); err != nil {
		return nil, fmt.Errorf("read random key: %w", err)
	}
	return key, nil
}

func (s *CipherService) Seal(c domain.Cipher, key, plaintext []byte) (domain.Envelope, error) {
	aead, err := newAEAD(c, key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(s.random, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	// AEAD output is ciphertext followed by the tag.
	split := len(sealed) - aead.Overhead()
	return domain.JoinEnvelope(nonce, sealed[split:], sealed[:split]), nil
}

func (s *CipherService) Open(c domain.Cipher, key []byte, env domain.Envelope) ([]byte, error) {
	aead, err := newAEAD(c, key)
	if err != nil {
		return nil, err
	}
	nonce, tag, ciphertext, err := env.Split(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidEnvelope, err)
	}
	return plaintext, nil
}

func newAEAD(c domain.Cipher, key []byte) (cipher.AEAD, error) {
	if len(key) != domain.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", apperrors.ErrInvalidInput, domain.KeySize, len(key))
	}
	switch c {
	case domain.CipherChaCha20:
		return chacha20poly1305.New(key)
	case domain.CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("new aes cipher: %w", err)
		}
		return cipher.NewGCM(block)
	}
	return nil, fmt.Errorf("%w: unknown cipher %q", apperrors.ErrInvalidInput, c)
}
