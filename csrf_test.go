package xapi

import "testing"

func TestGenerateCSRF(t *testing.T) {
	csrf := GenerateCSRF()
	if len(csrf) != 64 {
		t.Fatalf("expected 64 char hex, got %d chars", len(csrf))
	}
	// Should be different each time
	if csrf == GenerateCSRF() {
		t.Fatal("expected different csrf values")
	}
}

func TestExtractCSRFFromHeaders(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"no set-cookie", map[string]string{}, ""},
		{"plain ct0", map[string]string{"set-cookie": "ct0=abc123; Path=/; Secure"}, "abc123"},
		{"ct0 after other cookie attrs", map[string]string{"set-cookie": "Max-Age=3600; ct0=def456"}, "def456"},
		{"empty ct0", map[string]string{"set-cookie": "ct0=; Path=/"}, ""},
		{"unrelated cookie", map[string]string{"set-cookie": "guest_id=xyz; Path=/"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCSRFFromHeaders(tt.headers); got != tt.expected {
				t.Fatalf("extractCSRFFromHeaders = %q, want %q", got, tt.expected)
			}
		})
	}
}
