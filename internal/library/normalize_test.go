package library

import "testing"

func TestCleanName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Deadmau5", "Deadmau5"},
		{"  Deadmau5  ", "Deadmau5"},
		{"Daft   Punk", "Daft Punk"},
		{"Daft\tPunk\n", "Daft Punk"},
		{"AC/DC", "AC/DC"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := CleanName(tt.input)
			if result != tt.expected {
				t.Errorf("CleanName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
