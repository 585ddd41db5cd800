package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	keytoolout "studydash/internal/modules/keytool/adapter/out"
	"studydash/internal/modules/keytool/domain"
	"studydash/internal/modules/keytool/dto"
	"studydash/internal/modules/keytool/service"
	"studydash/internal/modules/keytool/usecase"
	apperrors "studydash/internal/platform/errors"
)

func TestGenerateWritesPrivateKeyAndRefusesOverwrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keys", "symmetric.key")
	uc := usecase.NewInteractor(service.NewCipherService(nil), keytoolout.NewFileKeyStore(path))

	out, err := uc.Generate(ctx, dto.GenerateInput{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	info, err := os.Stat(out.Path)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if info.Size() != domain.KeySize || info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected key file: size=%d perm=%v", info.Size(), info.Mode().Perm())
	}
	first, _ := os.ReadFile(path)

	if _, err := uc.Generate(ctx, dto.GenerateInput{}); !errors.Is(err, apperrors.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
	if _, err := uc.Generate(ctx, dto.GenerateInput{Force: true}); err != nil {
		t.Fatalf("forced generate: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) == string(second) {
		t.Fatalf("forced generate should replace the key")
	}
}

func TestDemoRoundTrip(t *testing.T) {
	t.Parallel()
	for _, c := range []string{"", "chacha20-poly1305"} {
		path := filepath.Join(t.TempDir(), "symmetric.key")
		uc := usecase.NewInteractor(service.NewCipherService(nil), keytoolout.NewFileKeyStore(path))
		out, err := uc.Demo(context.Background(), dto.DemoInput{Cipher: c})
		if err != nil {
			t.Fatalf("%q demo: %v", c, err)
		}
		if !out.Match || out.Recovered != domain.DemoMessage || out.Envelope == "" {
			t.Fatalf("%q: unexpected demo output %+v", c, out)
		}
	}
}

func TestDemoRejectsUnknownCipher(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCipherService(nil), keytoolout.NewFileKeyStore(filepath.Join(t.TempDir(), "k")))
	if _, err := uc.Demo(context.Background(), dto.DemoInput{Cipher: "rot13"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
