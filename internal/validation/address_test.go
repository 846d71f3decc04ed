package validation

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sold2move/internal/models"
)

func TestNormalizeAddressKey(t *testing.T) {
	base := NormalizeAddressKey("123 Main St", "Springfield", "IL", "62704")

	tests := []struct {
		name                     string
		street, city, state, zip string
		same                     bool
	}{
		{"identical input", "123 Main St", "Springfield", "IL", "62704", true},
		{"upper case", "123 MAIN ST", "SPRINGFIELD", "il", "62704", true},
		{"surrounding whitespace", "  123 Main St\t", " Springfield ", "IL ", "\n62704", true},
		{"different zip", "123 Main St", "Springfield", "IL", "62705", false},
		{"different state", "123 Main St", "Springfield", "MO", "62704", false},
		{"different street", "124 Main St", "Springfield", "IL", "62704", false},
		{"fields shifted", "123 Main St Springfield", "", "IL", "62704", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAddressKey(tt.street, tt.city, tt.state, tt.zip)
			if (got == base) != tt.same {
				t.Errorf("NormalizeAddressKey(%q, %q, %q, %q) = %q, base %q, want same=%v",
					tt.street, tt.city, tt.state, tt.zip, got, base, tt.same)
			}
		})
	}
}

func TestNormalizeAddressKey_EmptyFields(t *testing.T) {
	key := NormalizeAddressKey("", "", "", "")
	if len(key) != LookupKeyLength {
		t.Errorf("len(key) = %d, want %d", len(key), LookupKeyLength)
	}
	if !ValidateLookupKey(string(key)) {
		t.Errorf("ValidateLookupKey(%q) = false, want true", key)
	}
}

func TestNormalizeAddressKeyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("key is deterministic and fixed length", prop.ForAll(
		func(street, city, state, zip string) bool {
			a := NormalizeAddressKey(street, city, state, zip)
			b := NormalizeAddressKey(street, city, state, zip)
			return a == b && len(a) == LookupKeyLength && ValidateLookupKey(string(a))
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("key ignores case", prop.ForAll(
		func(street, city, state, zip string) bool {
			return NormalizeAddressKey(street, city, state, zip) ==
				NormalizeAddressKey(strings.ToUpper(street), strings.ToUpper(city), strings.ToUpper(state), strings.ToUpper(zip))
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(), gen.NumString(),
	))

	properties.Property("key ignores surrounding whitespace", prop.ForAll(
		func(street, city, state, zip string) bool {
			return NormalizeAddressKey(street, city, state, zip) ==
				NormalizeAddressKey(" "+street+" ", "\t"+city, state+"\n", "  "+zip)
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(), gen.NumString(),
	))

	properties.TestingRun(t)
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name        string
		addr        models.Address
		valid       bool
		wantMissing []string
	}{
		{"complete", models.Address{Street: "1 Elm St", City: "Metropolis", State: "NY", Zip: "10001"}, true, nil},
		{"missing street", models.Address{City: "Metropolis", State: "NY", Zip: "10001"}, false, []string{"street"}},
		{"blank city", models.Address{Street: "1 Elm St", City: "   ", State: "NY", Zip: "10001"}, false, []string{"city"}},
		{"all missing", models.Address{}, false, []string{"street", "city", "state", "zip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, missing := ValidateAddress(tt.addr)
			if valid != tt.valid {
				t.Errorf("ValidateAddress() valid = %v, want %v", valid, tt.valid)
			}
			if strings.Join(missing, ",") != strings.Join(tt.wantMissing, ",") {
				t.Errorf("ValidateAddress() missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestValidateLookupKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"normalized key", string(NormalizeAddressKey("1 Elm St", "Metropolis", "NY", "10001")), true},
		{"too short", "abc123", false},
		{"upper case hex", strings.ToUpper(string(NormalizeAddressKey("1 Elm St", "Metropolis", "NY", "10001"))), false},
		{"non hex", strings.Repeat("z", LookupKeyLength), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLookupKey(tt.key); got != tt.want {
				t.Errorf("ValidateLookupKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
