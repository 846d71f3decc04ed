package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LookupKey is the normalized cache identity of an address.
type LookupKey string

// Address is a property address as submitted by the caller.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// CachedLookup is a persisted skip-trace result. At most one row exists per Key.
type CachedLookup struct {
	ID              uuid.UUID       `json:"id"`
	Key             LookupKey       `json:"key"`
	PropertyID      *string         `json:"propertyId,omitempty"`
	Address         Address         `json:"address"`
	Homeowner       *Homeowner      `json:"homeowner"`
	LookupSucceeded bool            `json:"lookupSucceeded"`
	RawResponse     json.RawMessage `json:"rawResponse,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Usable reports whether the record can short-circuit a provider call.
// Failed lookups are never served from cache.
func (l *CachedLookup) Usable() bool {
	return l != nil && l.LookupSucceeded && l.Homeowner != nil
}

// LookupStats summarizes the cache table.
type LookupStats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Stale     int64 `json:"stale"`
}

// Lookup outcome constants, used as metric labels and log fields.
const (
	OutcomeCacheHit      = "cache_hit"
	OutcomeFound         = "found"
	OutcomeNotFound      = "not_found"
	OutcomeProviderError = "provider_error"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)
