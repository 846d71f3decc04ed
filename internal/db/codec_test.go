package db

import (
	"testing"

	"sold2move/internal/models"
)

func TestHomeownerCodec(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantNil bool
		wantErr bool
	}{
		{"null column", "", true, false},
		{"json null", "null", true, false},
		{"record", `{"fullName":"Jane Doe"}`, false, false},
		{"garbage", `{"fullName":`, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec models.CachedLookup
			err := DecodeHomeowner([]byte(tt.data), &rec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeHomeowner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (rec.Homeowner == nil) != tt.wantNil {
				t.Fatalf("Homeowner = %+v, wantNil %v", rec.Homeowner, tt.wantNil)
			}
			if rec.Homeowner != nil && (rec.Homeowner.Emails == nil || rec.Homeowner.PhoneNumbers == nil) {
				t.Error("decoded lists should be empty, not nil")
			}
		})
	}

	data, err := EncodeHomeowner(&models.CachedLookup{})
	if err != nil || data != nil {
		t.Errorf("EncodeHomeowner(nil homeowner) = %q, %v; want nil, nil", data, err)
	}
}
