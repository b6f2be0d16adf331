package xapi

import (
	"strconv"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected errorClass
	}{
		{"no errors", `{"data":{"user":{}}}`, errNone},
		{"empty errors", `{"errors":[]}`, errNone},
		{"banned 88", `{"errors":[{"code":88}]}`, errBanned},
		{"suspended 64", `{"errors":[{"code":64}]}`, errSuspended},
		{"locked 326", `{"errors":[{"code":326}]}`, errLocked},
		{"csrf 353", `{"errors":[{"code":353}]}`, errCSRF},
		{"auth expired 32", `{"errors":[{"code":32}]}`, errAuthExpired},
		{"blocked 161", `{"errors":[{"code":161}]}`, errBlocked},
		{"not authorized 179", `{"errors":[{"code":179}]}`, errNotAuthorized},
		{"not authorized 219", `{"errors":[{"code":219}]}`, errNotAuthorized},
		{"internal 131", `{"errors":[{"code":131}]}`, errInternal},
		{"duplicate 187", `{"errors":[{"code":187}]}`, errDuplicate},
		{"not found 34", `{"errors":[{"code":34}]}`, errNotFound},
		{"not found 144", `{"errors":[{"code":144}]}`, errNotFound},
		{"unknown code", `{"errors":[{"code":999}]}`, errNone},
		{"invalid json", `{invalid`, errNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyError([]byte(tt.body))
			if result != tt.expected {
				t.Fatalf("classifyError(%s) = %d, want %d", tt.body, result, tt.expected)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		err      *APIError
		expected string
	}{
		{&APIError{Code: 88}, "api error 88: rate limit exceeded"},
		{&APIError{Code: 187}, "api error 187: status is a duplicate"},
		{&APIError{Code: 9999, Message: "mystery"}, "api error 9999: mystery"},
		{&APIError{Code: 9999}, "api error 9999"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Fatalf("Error() = %q, want %q", got, tt.expected)
		}
	}
}

func TestFirstAPIError(t *testing.T) {
	err := firstAPIError([]byte(`{"errors":[{"code":64,"message":"suspended"},{"code":88}]}`))
	if err == nil || err.Code != 64 {
		t.Fatalf("expected code 64, got %v", err)
	}
	if firstAPIError([]byte(`{"data":{}}`)) != nil {
		t.Fatal("expected nil for clean body")
	}
	if firstAPIError([]byte(`{broken`)) != nil {
		t.Fatal("expected nil for invalid json")
	}
}

func TestParseRateLimitReset(t *testing.T) {
	// Valid unix timestamp round-trips.
	ts := time.Now().Add(5 * time.Minute).Unix()
	result := parseRateLimitReset(strconv.FormatInt(ts, 10))
	if result.Unix() != ts {
		t.Fatalf("expected %d, got %d", ts, result.Unix())
	}

	// Invalid falls back to ~15 minutes.
	result = parseRateLimitReset("not-a-number")
	if time.Until(result) < 14*time.Minute {
		t.Fatal("expected ~15min fallback for invalid input")
	}
}
