package gamestate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// UpdateMeta describes who made a store update.
type UpdateMeta struct {
	Source string `json:"source"`
}

// Store is the persistent key-value game state. Paths are dot separated.
// Update applies every key of patch atomically.
type Store interface {
	Get(ctx context.Context, path string) (any, bool, error)
	Set(ctx context.Context, path string, value any) error
	Increment(ctx context.Context, path string, delta int64) (int64, error)
	Update(ctx context.Context, patch map[string]any, meta UpdateMeta) error
}

// Decode converts a stored value into T via type assertion then JSON fallback.
// Values read back from SQL stores arrive as generic JSON maps.
func Decode[T any](value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	if v, ok := value.(*T); ok && v != nil {
		return *v, nil
	}

	var out T
	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case json.RawMessage:
		data = raw
	default:
		var err error
		if data, err = json.Marshal(value); err != nil {
			return out, fmt.Errorf("%s: %w", ErrMsgDecodeFailed, err)
		}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%s: %w", ErrMsgDecodeFailed, err)
	}
	return out, nil
}

// ToInt64 converts a stored numeric value into an int64.
func ToInt64(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s: %v", ErrMsgNotInteger, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("%s: %T", ErrMsgNotInteger, value)
	}
}
