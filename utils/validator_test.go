package utils

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type request struct {
		Email  string   `validate:"required,email"`
		Emails []string `validate:"omitempty,min=1,max=3,dive,email"`
		Port   int      `validate:"omitempty,gte=1,lte=65535"`
	}

	tests := []struct {
		name    string
		input   request
		wantErr string
	}{
		{"valid", request{Email: "a@b.co", Port: 1080}, ""},
		{"missing email", request{}, "email is required"},
		{"bad email", request{Email: "nope"}, "email must be a valid email"},
		{"too many entries", request{Email: "a@b.co", Emails: []string{"a@b.co", "b@b.co", "c@b.co", "d@b.co"}}, "must have at most 3 entries"},
		{"port too large", request{Email: "a@b.co", Port: 70000}, "port must be at most 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateStruct returned error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct accepted invalid input, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
