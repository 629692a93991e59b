package grading

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// queue messages are json, zstd compressed and base64 encoded

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

func EncodeMessage(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	compressed := encoder.EncodeAll(raw, make([]byte, 0, len(raw)))
	return base64.StdEncoding.EncodeToString(compressed), nil
}

func DecodeMessage(body string, v any) error {
	compressed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return fmt.Errorf("failed to decode base64 message: %w", err)
	}
	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress message: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return nil
}
