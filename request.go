package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const maxRetries = 3

// exec re-runs a request with a fresh credential snapshot. Used by the
// recovery paths after csrf rotation or relogin.
type exec func(authToken, csrf, userAgent string) (body []byte, hdrs map[string]string, status int, err error)

// doGET executes a GET request with multi-account retry, csrf rotation,
// relogin, and guest-token fallback.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, map[string]string, error) {
	// Anti-fingerprint jitter
	if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := stealth.DefaultBackoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}

		acc, accErr := c.nextAccount(ctx, endpoint)
		if accErr != nil {
			lastErr = accErr
			break
		}

		bc := c.clientForAccount(acc)
		run := func(authToken, csrf, ua string) ([]byte, map[string]string, int, error) {
			return c.doRequest(bc, "GET", url, apiHeaders(authToken, csrf, ua))
		}

		body, hdrs, err := c.runWithAccount(ctx, acc, endpoint, run)
		if err == nil {
			return body, hdrs, nil
		}
		lastErr = err
	}

	// Pool exhausted. Endpoints that work without a session fall back to a
	// guest token.
	if requiresAuth(endpoint) {
		if lastErr != nil {
			return nil, nil, fmt.Errorf("pool exhausted for %s (requires auth): %w", endpoint, lastErr)
		}
		return nil, nil, fmt.Errorf("%s requires authenticated account", endpoint)
	}
	return c.doGuestGET(ctx, endpoint, url, lastErr)
}

// nextAccount picks a usable account from the pool for the endpoint.
func (c *Client) nextAccount(ctx context.Context, endpoint string) (*Account, error) {
	filter := func(a *Account) bool {
		return a.AllowRequest(endpoint) && time.Now().After(a.proxyBackoff)
	}
	if requiresAuth(endpoint) {
		return c.pool.NextWithWait(ctx, filter, 5*time.Minute)
	}
	return c.pool.Next(filter)
}

// runWithAccount executes one request on one account, handling proactive
// csrf rotation, transport failures, HTTP status mapping, and in-body
// platform error codes. A nil error means body/hdrs are usable.
func (c *Client) runWithAccount(ctx context.Context, acc *Account, endpoint string, run exec) ([]byte, map[string]string, error) {
	if acc.CSRFAge() > csrfMaxAge {
		acc.RotateCSRF()
		slog.Info("csrf rotated (proactive)", slog.String("user", acc.Username))
		c.persistCredentials(acc)
	}

	authToken, csrf, ua := acc.Credentials()
	body, hdrs, status, err := run(authToken, csrf, ua)
	if err != nil {
		if acc.Proxy != "" && isProxyError(err) {
			c.markProxyDown(acc)
		} else {
			acc.RecordFailure()
		}
		return nil, nil, err
	}

	// Any HTTP response clears proxy consecutive failures.
	acc.mu.Lock()
	acc.proxyConsecFails = 0
	acc.mu.Unlock()

	switch {
	case status == 429:
		c.recordAPICall(endpoint, false, true)
		acc.MarkEndpointRateLimited(endpoint, parseRateLimitReset(hdrs["x-rate-limit-reset"]))
		return nil, nil, fmt.Errorf("429 rate limited")

	case status == 401 || status == 403:
		c.recordAPICall(endpoint, false, false)
		switch classifyError(body) {
		case errCSRF:
			return c.recoverCSRF(acc, endpoint, run)
		case errAuthExpired:
			return c.recoverAuth(acc, endpoint, "auth expired (code 32)", run)
		default:
			acc.RecordFailure()
			return nil, nil, fmt.Errorf("%s HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
		}

	case status != 200 && status != 201:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("non-200 response", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 500)))
		if shouldDeactivate := acc.RecordFailure(); shouldDeactivate {
			total, failed, consec := acc.Stats()
			slog.Warn("account unhealthy, deactivating",
				slog.String("user", acc.Username),
				slog.Int("total", total),
				slog.Int("failed", failed),
				slog.Int("consec", consec))
			c.pool.DeactivateItem(acc)
		}
		return nil, nil, fmt.Errorf("%s HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
	}

	// HTTP 200 — the platform reports most failures inside the body.
	switch class := classifyError(body); class {
	case errNone, errDuplicate, errNotFound:
		c.harvestCSRF(acc, hdrs, csrf)
		c.recordAPICall(endpoint, true, false)
		acc.RecordSuccess()
		if class != errNone {
			if apiErr := firstAPIError(body); apiErr != nil {
				return body, hdrs, apiErr
			}
		}
		return body, hdrs, nil

	case errCSRF:
		c.recordAPICall(endpoint, false, false)
		return c.recoverCSRF(acc, endpoint, run)

	case errAuthExpired:
		c.recordAPICall(endpoint, false, false)
		return c.recoverAuth(acc, endpoint, "auth expired (code 32)", run)

	case errInternal:
		if hasResponseData(body) {
			c.harvestCSRF(acc, hdrs, csrf)
			c.recordAPICall(endpoint, true, false)
			acc.RecordSuccess()
			slog.Debug("error 131 with usable data, treating as success", slog.String("endpoint", endpoint))
			return body, hdrs, nil
		}
		c.recordAPICall(endpoint, false, false)
		slog.Warn("error 131 without data, retrying", slog.String("user", acc.Username), slog.String("endpoint", endpoint))
		return nil, nil, fmt.Errorf("platform internal error (131)")

	case errBanned:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("account banned (code 88)", slog.String("user", acc.Username))
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
		return nil, nil, fmt.Errorf("account banned")

	case errSuspended:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("account suspended (code 64), permanently deactivating", slog.String("user", acc.Username))
		c.pool.DeactivateItem(acc)
		return nil, nil, fmt.Errorf("account suspended")

	case errLocked:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("account locked (code 326, captcha needed)", slog.String("user", acc.Username))
		if c.cfg.CaptchaSolver != nil {
			slog.Info("attempting CAPTCHA unlock via relogin", slog.String("user", acc.Username))
			if body2, hdrs2, err2 := c.recoverAuth(acc, endpoint, "account locked (code 326)", run); err2 == nil {
				slog.Info("CAPTCHA unlock succeeded", slog.String("user", acc.Username))
				return body2, hdrs2, nil
			}
			slog.Warn("CAPTCHA unlock failed", slog.String("user", acc.Username))
		}
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
		return nil, nil, fmt.Errorf("account locked")

	default: // errBlocked, errNotAuthorized
		c.recordAPICall(endpoint, false, false)
		slog.Warn("account error", slog.String("user", acc.Username), slog.Int("class", int(class)))
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
		if apiErr := firstAPIError(body); apiErr != nil {
			return nil, nil, apiErr
		}
		return nil, nil, fmt.Errorf("account error class %d", class)
	}
}

// recoverCSRF rotates the csrf token and retries once.
func (c *Client) recoverCSRF(acc *Account, endpoint string, run exec) ([]byte, map[string]string, error) {
	slog.Warn("CSRF error 353, rotating csrf", slog.String("user", acc.Username))
	acc.RotateCSRF()
	c.persistCredentials(acc)

	authToken, csrf, ua := acc.Credentials()
	body, hdrs, status, err := run(authToken, csrf, ua)
	if err == nil && (status == 200 || status == 201) && classifyError(body) == errNone {
		c.harvestCSRF(acc, hdrs, csrf)
		c.recordAPICall(endpoint, true, false)
		acc.RecordSuccess()
		return body, hdrs, nil
	}
	acc.RecordFailure()
	return nil, nil, fmt.Errorf("CSRF retry failed")
}

// recoverAuth relogins the account and retries once. A failed relogin
// soft-deactivates the account. reason names the condition that triggered
// the recovery.
func (c *Client) recoverAuth(acc *Account, endpoint, reason string, run exec) ([]byte, map[string]string, error) {
	slog.Warn("relogin recovery", slog.String("user", acc.Username), slog.String("reason", reason))
	if reErr := c.relogin(acc); reErr != nil {
		slog.Warn("relogin failed, soft-deactivating", slog.String("user", acc.Username), slog.Any("error", reErr))
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
		return nil, nil, reErr
	}

	authToken, csrf, ua := acc.Credentials()
	body, hdrs, status, err := run(authToken, csrf, ua)
	if err == nil && (status == 200 || status == 201) {
		c.harvestCSRF(acc, hdrs, csrf)
		c.recordAPICall(endpoint, true, false)
		acc.RecordSuccess()
		return body, hdrs, nil
	}
	c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
	return nil, nil, fmt.Errorf("post-relogin request failed")
}

// harvestCSRF picks up a server-rotated csrf cookie from response headers.
func (c *Client) harvestCSRF(acc *Account, hdrs map[string]string, current string) {
	if newCSRF := extractCSRFFromHeaders(hdrs); newCSRF != "" && newCSRF != current {
		acc.SetCSRF(newCSRF)
		c.persistCredentials(acc)
	}
}

// doGuestGET retries an unauthenticated-capable endpoint with a guest token.
func (c *Client) doGuestGET(ctx context.Context, endpoint, url string, poolErr error) ([]byte, map[string]string, error) {
	gt, ok := c.getGuestTokenCached()
	if !ok {
		token, err := c.acquireGuestToken(ctx, c.client)
		if err != nil {
			if poolErr != nil {
				return nil, nil, fmt.Errorf("pool exhausted for %s: %w", endpoint, poolErr)
			}
			return nil, nil, fmt.Errorf("guest token unavailable for %s: %w", endpoint, err)
		}
		c.setGuestToken(token)
		gt = token
		slog.Info("guest token acquired as fallback", slog.String("endpoint", endpoint))
	}

	body, hdrs, status, err := c.doRequest(c.client, "GET", url, guestHeaders(gt))
	if err != nil {
		return nil, nil, err
	}
	switch {
	case status == 429:
		c.recordAPICall(endpoint, false, true)
		c.markGuestTokenRateLimited(parseRateLimitReset(hdrs["x-rate-limit-reset"]))
		return nil, nil, fmt.Errorf("guest token rate-limited for %s", endpoint)

	case status == 401 || status == 403:
		slog.Warn("guest token expired, reacquiring", slog.String("endpoint", endpoint), slog.Int("status", status))
		c.setGuestToken("")
		newGT, gtErr := c.acquireGuestToken(ctx, c.client)
		if gtErr != nil {
			c.recordAPICall(endpoint, false, false)
			return nil, nil, fmt.Errorf("guest token reacquisition failed for %s: %w", endpoint, gtErr)
		}
		c.setGuestToken(newGT)
		body, hdrs, status, err = c.doRequest(c.client, "GET", url, guestHeaders(newGT))
		if err != nil {
			return nil, nil, err
		}
		if status != 200 {
			c.recordAPICall(endpoint, false, false)
			return nil, nil, fmt.Errorf("%s (guest retry) HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
		}
		c.recordAPICall(endpoint, true, false)
		return body, hdrs, nil

	case status != 200:
		c.recordAPICall(endpoint, false, false)
		return nil, nil, fmt.Errorf("%s (guest) HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
	}
	c.recordAPICall(endpoint, true, false)
	return body, hdrs, nil
}

// doPOST executes an authenticated POST with account selection and the
// same retry/recovery behavior as doGET. contentType selects between JSON
// and form bodies via the header set.
func (c *Client) doPOST(ctx context.Context, endpoint, url string, payload []byte, form bool) ([]byte, error) {
	if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := stealth.DefaultBackoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		acc, accErr := c.nextAccount(ctx, endpoint)
		if accErr != nil {
			lastErr = accErr
			break
		}

		bc := c.clientForAccount(acc)
		run := func(authToken, csrf, ua string) ([]byte, map[string]string, int, error) {
			headers := apiHeaders(authToken, csrf, ua)
			if form {
				headers = formHeaders(authToken, csrf, ua)
			}
			return c.doRequestWithBody(bc, "POST", url, headers, bytes.NewReader(payload))
		}

		body, _, err := c.runWithAccount(ctx, acc, endpoint, run)
		if err == nil {
			return body, nil
		}
		// Platform-reported terminal errors are not retryable on another
		// account.
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case 187, 34, 144:
				return body, err
			}
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s failed after %d attempts: %w", endpoint, maxRetries, lastErr)
	}
	return nil, fmt.Errorf("%s failed after %d attempts", endpoint, maxRetries)
}

// requiresAuth returns true for endpoints that need a real authenticated
// session.
func requiresAuth(endpoint string) bool {
	switch endpoint {
	case "Followers", "Following", "Retweeters", "Favoriters",
		"CreateTweet", "DeleteTweet",
		"FavoriteTweet", "UnfavoriteTweet",
		"CreateRetweet", "DeleteRetweet",
		"Follow", "Unfollow", "SendDM":
		return true
	}
	return false
}

// isProxyError returns true if the error looks like a proxy connectivity
// failure.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "proxy") ||
		strings.Contains(msg, "SOCKS") ||
		strings.Contains(msg, "tunnel") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

// markProxyDown applies exponential backoff for proxy failures.
func (c *Client) markProxyDown(acc *Account) {
	acc.mu.Lock()
	acc.proxyConsecFails++
	fails := acc.proxyConsecFails
	acc.mu.Unlock()

	duration := stealth.BackoffConfig{
		InitialWait: c.cfg.ProxyBackoffInitial,
		MaxWait:     c.cfg.ProxyBackoffMax,
		Multiplier:  2.0,
		JitterPct:   0.3,
	}.Duration(fails - 1)

	acc.mu.Lock()
	acc.proxyBackoff = time.Now().Add(duration)
	acc.mu.Unlock()

	slog.Warn("proxy down, backing off",
		slog.String("user", acc.Username),
		slog.String("proxy", stealth.MaskProxy(acc.Proxy)),
		slog.Int("consec_fails", fails),
		slog.Duration("backoff", duration))
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData returns true if the JSON body contains a non-null "data"
// field.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}

// addGraphQLParams builds the full URL with variables, features, and
// optional fieldToggles.
func addGraphQLParams(url string, variables, features map[string]any, fieldToggles ...map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(features)
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	result := url + sep + "variables=" + jsonEscape(v) + "&features=" + jsonEscape(f)
	if len(fieldToggles) > 0 && fieldToggles[0] != nil {
		ft, _ := json.Marshal(fieldToggles[0])
		result += "&fieldToggles=" + jsonEscape(ft)
	}
	return result
}

// jsonEscape percent-encodes the characters the platform's web app encodes
// in query-embedded JSON.
func jsonEscape(b []byte) string {
	var result strings.Builder
	for _, ch := range string(b) {
		switch ch {
		case ' ':
			result.WriteString("%20")
		case '"':
			result.WriteString("%22")
		case '{':
			result.WriteString("%7B")
		case '}':
			result.WriteString("%7D")
		case '[':
			result.WriteString("%5B")
		case ']':
			result.WriteString("%5D")
		case ':':
			result.WriteString("%3A")
		case ',':
			result.WriteString("%2C")
		case '\'':
			result.WriteString("%27")
		case '|':
			result.WriteString("%7C")
		default:
			result.WriteRune(ch)
		}
	}
	return result.String()
}
