package out

import (
	"context"

	"studydash/internal/modules/session/domain"
)

// KeyValueStore is one of the two persistence scopes. Get reports whether
// the key exists; Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Stores groups the durable store (survives restarts) and the ephemeral one
// (lives as long as the process).
type Stores struct {
	Durable   KeyValueStore
	Ephemeral KeyValueStore
}

func (s Stores) Select(mode domain.StorageMode) KeyValueStore {
	if mode == domain.StorageDurable {
		return s.Durable
	}
	return s.Ephemeral
}

func (s Stores) Other(mode domain.StorageMode) KeyValueStore {
	if mode == domain.StorageDurable {
		return s.Ephemeral
	}
	return s.Durable
}

// ProgressEndpoint performs one exchange. A returned error is a transport
// failure: unreachable server, non-2xx status or an undecodable body.
type ProgressEndpoint interface {
	Exchange(ctx context.Context, req domain.ExchangeRequest) (domain.ExchangeResponse, error)
}
