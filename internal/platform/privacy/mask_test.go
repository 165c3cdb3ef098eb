package privacy

import "testing"

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"GHA-123456789-0", "***-******789-0"},
		{"  GHA-123456789-0 ", "***-******789-0"},
		{"12345678", "****5678"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MaskCardNumber(tt.input); got != tt.expected {
				t.Errorf("MaskCardNumber(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
