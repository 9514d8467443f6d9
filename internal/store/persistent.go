package store

import (
	"encoding/json"
	"fmt"

	"lumera.app/lumera/internal/logger"
)

// Read returns the value stored under key, or def when the key is absent,
// unreadable or does not decode as T.
func Read[T any](kv KV, key string, def T) T {
	raw, found, err := kv.Get(key)
	if err != nil {
		logger.Warnw("failed to read stored value, using default", "key", key, "error", err)
		return def
	}
	if !found {
		return def
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		logger.Warnw("stored value is malformed, using default", "key", key, "error", err)
		return def
	}
	return value
}

func Write[T any](kv KV, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return kv.Set(key, string(data))
}

func Remove(kv KV, key string) error {
	return kv.Delete(key)
}
