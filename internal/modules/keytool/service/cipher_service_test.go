package service_test

import (
	"bytes"
	"errors"
	"testing"

	"studydash/internal/modules/keytool/domain"
	"studydash/internal/modules/keytool/service"
	apperrors "studydash/internal/platform/errors"
)

func TestSealOpenBothCiphers(t *testing.T) {
	t.Parallel()
	svc := service.NewCipherService(nil)
	key, err := svc.NewKey()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	for _, c := range []domain.Cipher{domain.CipherAESGCM, domain.CipherChaCha20} {
		env, err := svc.Seal(c, key, []byte(domain.DemoMessage))
		if err != nil {
			t.Fatalf("%s seal: %v", c, err)
		}
		if len(env) != 12+domain.TagSize+len(domain.DemoMessage) {
			t.Fatalf("%s: unexpected envelope length %d", c, len(env))
		}
		got, err := svc.Open(c, key, env)
		if err != nil {
			t.Fatalf("%s open: %v", c, err)
		}
		if !bytes.Equal(got, []byte(domain.DemoMessage)) {
			t.Fatalf("%s: got %q", c, got)
		}
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	t.Parallel()
	svc := service.NewCipherService(nil)
	key, _ := svc.NewKey()
	env, err := svc.Seal(domain.CipherAESGCM, key, []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	tampered := append(domain.Envelope(nil), env...)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := svc.Open(domain.CipherAESGCM, key, tampered); !errors.Is(err, apperrors.ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope, got %v", err)
	}
	if _, err := svc.Open(domain.CipherAESGCM, key, env[:10]); !errors.Is(err, apperrors.ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope for short envelope, got %v", err)
	}
	if _, err := svc.Seal(domain.CipherAESGCM, key[:16], []byte("x")); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short key, got %v", err)
	}
}

func TestEnvelopeLayoutPutsNonceAndTagFirst(t *testing.T) {
	t.Parallel()
	nonce, tag, ct, err := domain.JoinEnvelope([]byte("nnnnnnnnnnnn"), bytes.Repeat([]byte("t"), domain.TagSize), []byte("body")).Split(12)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if string(nonce) != "nnnnnnnnnnnn" || len(tag) != domain.TagSize || string(ct) != "body" {
		t.Fatalf("unexpected split: %q %q %q", nonce, tag, ct)
	}
}
