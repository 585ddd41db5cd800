package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"studydash/internal/modules/keytool/domain"
	keytoolout "studydash/internal/modules/keytool/port/out"
	apperrors "studydash/internal/platform/errors"
)

type FileKeyStore struct {
	path string
}

func NewFileKeyStore(path string) keytoolout.KeyStore {
	return &FileKeyStore{path: path}
}

func (s *FileKeyStore) Location() string {
	return s.path
}

func (s *FileKeyStore) Save(_ context.Context, key []byte, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(s.path, flags, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", apperrors.ErrKeyExists, s.path)
	}
	if err != nil {
		return fmt.Errorf("open key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return fmt.Errorf("chmod key file: %w", err)
	}
	return f.Close()
}

func (s *FileKeyStore) Load(_ context.Context) ([]byte, error) {
	key, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(key) != domain.KeySize {
		return nil, fmt.Errorf("%w: key file holds %d bytes", apperrors.ErrInvalidInput, len(key))
	}
	return key, nil
}
