package validation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"sold2move/internal/models"
)

// keyDelimiter separates address fields before hashing. It never appears in address text.
const keyDelimiter = "\x1f"

// LookupKeyLength is the fixed length of a normalized address key.
const LookupKeyLength = 32

// NormalizeAddressKey derives the cache key for an address.
// Fields are trimmed and lower-cased so case and surrounding whitespace never change the key.
func NormalizeAddressKey(street, city, state, zip string) models.LookupKey {
	joined := strings.Join([]string{
		normalizeField(street),
		normalizeField(city),
		normalizeField(state),
		normalizeField(zip),
	}, keyDelimiter)

	sum := sha256.Sum256([]byte(joined))
	return models.LookupKey(hex.EncodeToString(sum[:])[:LookupKeyLength])
}

// NormalizeAddress is NormalizeAddressKey over an Address value.
func NormalizeAddress(addr models.Address) models.LookupKey {
	return NormalizeAddressKey(addr.Street, addr.City, addr.State, addr.Zip)
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateAddress checks that every address field is present.
// Returns the names of the missing fields.
func ValidateAddress(addr models.Address) (bool, []string) {
	var missing []string
	if strings.TrimSpace(addr.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(addr.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(addr.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(addr.Zip) == "" {
		missing = append(missing, "zip")
	}
	return len(missing) == 0, missing
}

// ValidateLookupKey checks that s has the shape of a normalized address key.
func ValidateLookupKey(s string) bool {
	if len(s) != LookupKeyLength {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
