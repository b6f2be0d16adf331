package xapi

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// GenerateCSRF generates a random 32-byte hex string for use as a ct0
// CSRF cookie value.
func GenerateCSRF() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", 64)
	}
	return hex.EncodeToString(b)
}

// csrfMaxAge is the maximum age of a csrf token before proactive rotation.
const csrfMaxAge = 4 * time.Hour

// extractCSRFFromHeaders parses the ct0 value from a set-cookie response
// header, if the server rotated it.
func extractCSRFFromHeaders(headers map[string]string) string {
	cookie := headers["set-cookie"]
	if cookie == "" {
		return ""
	}
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "ct0=") {
			if val := strings.TrimPrefix(part, "ct0="); val != "" {
				return val
			}
		}
	}
	return ""
}
