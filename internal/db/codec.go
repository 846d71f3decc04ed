package db

import (
	"encoding/json"
	"fmt"

	"sold2move/internal/models"
)

// EncodeHomeowner serializes the homeowner column. A nil homeowner encodes to nil (SQL NULL).
func EncodeHomeowner(rec *models.CachedLookup) ([]byte, error) {
	if rec.Homeowner == nil {
		return nil, nil
	}
	b, err := json.Marshal(rec.Homeowner)
	if err != nil {
		return nil, fmt.Errorf("encoding homeowner: %w", err)
	}
	return b, nil
}

// DecodeHomeowner parses the homeowner column into rec.
func DecodeHomeowner(data []byte, rec *models.CachedLookup) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var h models.Homeowner
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("decoding homeowner: %w", err)
	}
	h.EnsureSlices()
	rec.Homeowner = &h
	return nil
}
