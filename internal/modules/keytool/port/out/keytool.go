package out

import "context"

// KeyStore keeps a single symmetric key. Save fails with ErrKeyExists when a
// key is already present and overwrite is false.
type KeyStore interface {
	Save(ctx context.Context, key []byte, overwrite bool) error
	Load(ctx context.Context) ([]byte, error)
	Location() string
}
