package database

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeValue serializes a game-state value for a JSON column.
func EncodeValue(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgFailedToEncodeValue, err)
	}
	return string(data), nil
}

// DecodeValue parses a JSON column. Numbers come back as json.Number so
// large integers keep their precision.
func DecodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeValue, err)
	}
	return out, nil
}
