package xapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// errorClass categorizes platform API error responses for targeted handling.
type errorClass int

const (
	errNone          errorClass = iota
	errBanned                   // 88 — rate limit abuse
	errSuspended                // 64 — account suspended
	errLocked                   // 326 — account locked (captcha needed)
	errCSRF                     // 353 — csrf token mismatch
	errAuthExpired              // 32 — could not authenticate
	errBlocked                  // 161 — blocked from performing action
	errNotAuthorized            // 179, 219 — not authorized
	errInternal                 // 131 — platform internal error
	errDuplicate                // 187 — duplicate tweet
	errNotFound                 // 34, 144 — resource does not exist
)

// apiCodeMessages maps platform error codes to human-readable messages.
var apiCodeMessages = map[int]string{
	32:  "could not authenticate",
	34:  "resource not found",
	64:  "account suspended",
	88:  "rate limit exceeded",
	131: "internal platform error",
	144: "no status found with that ID",
	161: "unable to follow more people at this time",
	179: "not authorized to see this status",
	187: "status is a duplicate",
	219: "not authorized",
	326: "account temporarily locked",
	353: "csrf token mismatch",
}

// APIError is a platform-reported error carried in a response body.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if msg, ok := apiCodeMessages[e.Code]; ok {
		return fmt.Sprintf("api error %d: %s", e.Code, msg)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Code)
}

// firstAPIError extracts the first error object from a response body, or
// nil if the body carries none.
func firstAPIError(body []byte) *APIError {
	var resp struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &resp) != nil || len(resp.Errors) == 0 {
		return nil
	}
	return &APIError{Code: resp.Errors[0].Code, Message: resp.Errors[0].Message}
}

// classifyError inspects a response body for known platform error codes.
func classifyError(body []byte) errorClass {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return errBanned
		case 64:
			return errSuspended
		case 326:
			return errLocked
		case 353:
			return errCSRF
		case 32:
			return errAuthExpired
		case 161:
			return errBlocked
		case 179, 219:
			return errNotAuthorized
		case 131:
			return errInternal
		case 187:
			return errDuplicate
		case 34, 144:
			return errNotFound
		}
	}
	return errNone
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}
