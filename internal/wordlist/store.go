package wordlist

import (
	"context"
	"encoding/json"

	"ingredient-scanner/internal/domain"
)

// Store persists phrase lists under string keys. Load reports ok=false when
// the key has never been saved or was cleared.
type Store interface {
	Load(ctx context.Context, key string) (phrases []string, ok bool, err error)
	Save(ctx context.Context, key string, phrases []string) error
	Clear(ctx context.Context, key string) error
}

// EncodePhrases renders phrases as the persisted JSON array.
func EncodePhrases(phrases []string) (string, error) {
	if phrases == nil {
		phrases = []string{}
	}
	data, err := json.Marshal(phrases)
	if err != nil {
		return "", domain.StorageFailure("encode word list", err)
	}
	return string(data), nil
}

// DecodePhrases parses a persisted JSON array.
func DecodePhrases(raw string) ([]string, error) {
	var phrases []string
	if err := json.Unmarshal([]byte(raw), &phrases); err != nil {
		return nil, domain.StorageFailure("corrupt word list", err)
	}
	if phrases == nil {
		phrases = []string{}
	}
	return phrases, nil
}
