package skiptrace

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sold2move/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        models.Homeowner
		wantSuccess bool
	}{
		{
			name: "skip trace shape",
			raw: `{"results": {
				"persons": [{
					"name": {"first": "Jane", "last": "Doe", "full": "Jane Q Doe"},
					"emails": [{"email": "jane@example.com", "tested": true}],
					"enrichedEmails": ["jane.doe@example.net"],
					"phoneNumbers": [
						{"number": "5125550101", "type": "Landline", "carrier": "AT&T", "score": 40, "reachable": true, "tested": true},
						{"number": "5125550102", "type": "Mobile", "carrier": "Verizon", "score": 95, "reachable": true, "dnc": true, "lastReportedDate": "2024-01-02"}
					]
				}],
				"meta": {"results": {"matchCount": 1}}
			}}`,
			want: models.Homeowner{
				FirstName: strPtr("Jane"),
				LastName:  strPtr("Doe"),
				FullName:  strPtr("Jane Q Doe"),
				Emails: []models.Email{
					{Address: "jane@example.com", Verified: true},
					{Address: "jane.doe@example.net"},
				},
				PhoneNumbers: []models.Phone{
					{Number: "5125550102", Type: "Mobile", Carrier: "Verizon", ConfidenceScore: 95, Reachable: true, DoNotCall: true, LastReportedDate: "2024-01-02"},
					{Number: "5125550101", Type: "Landline", Carrier: "AT&T", ConfidenceScore: 40, Reachable: true, Verified: true},
				},
				HasDoNotCallPhone: true,
			},
			wantSuccess: true,
		},
		{
			name: "top-level owner composes full name",
			raw: `{"owner": {
				"names": [{"first": "John", "last": "Smith"}, {"first": "Mary", "last": "Smith"}],
				"emails": ["john@example.com"],
				"litigator": true
			}}`,
			want: models.Homeowner{
				FirstName:    strPtr("John"),
				LastName:     strPtr("Smith"),
				FullName:     strPtr("John Smith"),
				Emails:       []models.Email{{Address: "john@example.com"}},
				PhoneNumbers: []models.Phone{},
				IsLitigator:  true,
			},
			wantSuccess: true,
		},
		{
			name: "owner nested under results",
			raw: `{"results": {"owner": {
				"names": [{"full": "Acme Holdings LLC"}],
				"phoneNumbers": [{"number": "5125550199", "score": "70"}]
			}}}`,
			want: models.Homeowner{
				FullName:     strPtr("Acme Holdings LLC"),
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{{Number: "5125550199", ConfidenceScore: 70}},
			},
			wantSuccess: true,
		},
		{
			name: "first shape wins scalars and lists merge without duplicates",
			raw: `{"results": {
				"persons": [{
					"name": {"first": "Jane", "last": "Doe"},
					"emails": ["jane@example.com"],
					"phoneNumbers": [{"number": "5125550101", "score": 50}]
				}],
				"owner": {
					"names": [{"first": "J", "last": "Doe-Smith", "full": "J Doe-Smith"}],
					"emails": ["jane@example.com", "JANE@example.com"],
					"enrichedEmails": [{"email": "owner@example.com", "tested": true}],
					"phoneNumbers": [
						{"number": "5125550101", "score": 90},
						{"number": "5125550103", "score": 60}
					],
					"dnc": {"tcpa": true}
				}
			}}`,
			want: models.Homeowner{
				FirstName: strPtr("Jane"),
				LastName:  strPtr("Doe"),
				FullName:  strPtr("Jane Doe"),
				Emails: []models.Email{
					{Address: "jane@example.com"},
					{Address: "JANE@example.com"},
					{Address: "owner@example.com", Verified: true},
				},
				PhoneNumbers: []models.Phone{
					{Number: "5125550103", ConfidenceScore: 60},
					{Number: "5125550101", ConfidenceScore: 50},
				},
				IsLitigator: true,
			},
			wantSuccess: true,
		},
		{
			name: "unparseable scores count as zero and keep provider order",
			raw: `{"results": {"persons": [{
				"phoneNumbers": [
					{"number": "1", "score": "high"},
					{"number": "2", "score": null},
					{"number": "3", "score": 10},
					{"number": "4"}
				]
			}]}}`,
			want: models.Homeowner{
				Emails: []models.Email{},
				PhoneNumbers: []models.Phone{
					{Number: "3", ConfidenceScore: 10},
					{Number: "1"},
					{Number: "2"},
					{Number: "4"},
				},
			},
			wantSuccess: true,
		},
		{
			name: "tcpa flag marks litigator",
			raw:  `{"results": {"persons": [{"name": {"full": "Pat Lee"}, "dnc": {"tcpa": true}}]}}`,
			want: models.Homeowner{
				FullName:     strPtr("Pat Lee"),
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{},
				IsLitigator:  true,
			},
			wantSuccess: true,
		},
		{
			name: "loosely typed flags and numeric phone numbers",
			raw: `{"results": {"persons": [{
				"litigator": "false",
				"dnc": {"tcpa": 0},
				"emails": [{"email": "a@example.com", "tested": "yes"}],
				"phoneNumbers": [
					{"number": 5550100, "reachable": "true", "dnc": 1, "tested": "0"},
					{"number": "5550101", "reachable": {}, "dnc": "maybe", "tested": null}
				]
			}]}}`,
			want: models.Homeowner{
				Emails: []models.Email{{Address: "a@example.com", Verified: true}},
				PhoneNumbers: []models.Phone{
					{Number: "5550100", Reachable: true, DoNotCall: true},
					{Number: "5550101"},
				},
				HasDoNotCallPhone: true,
			},
			wantSuccess: true,
		},
		{
			name: "string litigator flag",
			raw:  `{"owner": {"names": [{"full": "Sam Roe"}], "litigator": "true"}}`,
			want: models.Homeowner{
				FullName:     strPtr("Sam Roe"),
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{},
				IsLitigator:  true,
			},
			wantSuccess: true,
		},
		{
			name: "out of range scores are clamped",
			raw: `{"results": {"persons": [{
				"phoneNumbers": [
					{"number": "1", "score": 50},
					{"number": "2", "score": 1e30},
					{"number": "3", "score": "-1e30"}
				]
			}]}}`,
			want: models.Homeowner{
				Emails: []models.Email{},
				PhoneNumbers: []models.Phone{
					{Number: "2", ConfidenceScore: math.MaxInt},
					{Number: "1", ConfidenceScore: 50},
					{Number: "3", ConfidenceScore: math.MinInt},
				},
			},
			wantSuccess: true,
		},
		{
			name: "no match",
			raw:  `{"results": {"persons": [], "meta": {"results": {"matchCount": 0}}}}`,
			want: models.Homeowner{
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{},
			},
			wantSuccess: false,
		},
		{
			name: "match count alone signals success",
			raw:  `{"results": {"meta": {"results": {"matchCount": "2"}}}}`,
			want: models.Homeowner{
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{},
			},
			wantSuccess: true,
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: models.Homeowner{
				Emails:       []models.Email{},
				PhoneNumbers: []models.Phone{},
			},
			wantSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Success != tt.wantSuccess {
				t.Errorf("Parse() success = %v, want %v", got.Success, tt.wantSuccess)
			}
			if diff := cmp.Diff(tt.want, got.Homeowner); diff != "" {
				t.Errorf("Parse() homeowner mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHasDoNotCallPhoneComputedAfterMerge(t *testing.T) {
	// The only DNC phone comes from the second shape.
	raw := `{"results": {
		"persons": [{"phoneNumbers": [{"number": "1", "score": 80}]}],
		"owner": {"phoneNumbers": [{"number": "2", "score": 20, "dnc": true}]}
	}}`

	got, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Homeowner.HasDoNotCallPhone {
		t.Error("HasDoNotCallPhone = false, want true")
	}
	if got.Homeowner.PhoneNumbers[0].Number != "1" {
		t.Errorf("first phone = %q, want highest score first", got.Homeowner.PhoneNumbers[0].Number)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `<html>oops</html>`},
		{"truncated", `{"results": {"persons": [`},
		{"wrong email type", `{"results": {"persons": [{"emails": [42]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}
