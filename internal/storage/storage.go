package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store is a string-keyed persistence adapter, durable across restarts.
// Writes are whole-value replaces; there are no transactions.
// Consumers define this interface, not the redis implementation.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")

// schemaVersion tags every persisted JSON blob so future shape changes can
// migrate instead of silently misparsing.
const schemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// MarshalVersioned wraps v in a version-tagged envelope.
func MarshalVersioned(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload failed: %w", err)
	}
	blob, err := json.Marshal(envelope{Version: schemaVersion, Data: data})
	if err != nil {
		return "", fmt.Errorf("marshal envelope failed: %w", err)
	}
	return string(blob), nil
}

// UnmarshalVersioned unwraps a version-tagged envelope into v. Blobs with an
// unknown version are rejected rather than guessed at.
func UnmarshalVersioned(blob string, v interface{}) error {
	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return fmt.Errorf("unmarshal envelope failed: %w", err)
	}
	if env.Version != schemaVersion {
		return fmt.Errorf("unsupported schema version %d", env.Version)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("unmarshal payload failed: %w", err)
	}
	return nil
}
