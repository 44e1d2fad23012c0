package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"india 10 digit leading 9", "9876543210", "+919876543210", false},
		{"india 10 digit leading 6", "6123456789", "+916123456789", false},
		{"india 10 digit leading 7", "7012345678", "+917012345678", false},
		{"india 10 digit leading 8", "8012345678", "+918012345678", false},
		{"us 10 digit", "2025551234", "+12025551234", false},
		{"us 10 digit leading 5", "5551234567", "+15551234567", false},
		{"india with country code", "919876543210", "+919876543210", false},
		{"us with country code", "12025551234", "+12025551234", false},
		{"separators stripped", "+91 98765-43210", "+919876543210", false},
		{"us formatted", "(202) 555-1234", "+12025551234", false},
		{"too short", "12345", "", true},
		{"too long", "1234567890123456", "", true},
		{"eleven digits not starting 1", "20255512345", "", true},
		{"twelve digits not starting 91", "122025551234", "", true},
		{"empty", "", "", true},
		{"letters only", "call me", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
