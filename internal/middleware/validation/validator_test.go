package validation

import (
	"strings"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		max     int
		want    string
		wantErr bool
	}{
		{"valid prompt", "where is puraran beach", 100, "where is puraran beach", false},
		{"trims whitespace", "  hello  ", 100, "hello", false},
		{"empty prompt", "", 100, "", true},
		{"whitespace only", "   \n\t ", 100, "", true},
		{"at the limit", strings.Repeat("a", 100), 100, strings.Repeat("a", 100), false},
		{"over the limit", strings.Repeat("a", 101), 100, "", true},
		{"multi-byte characters counted as one", strings.Repeat("é", 100), 100, strings.Repeat("é", 100), false},
		{"multi-byte over the limit", strings.Repeat("é", 101), 100, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePrompt(tt.prompt, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePrompt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidatePrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}
