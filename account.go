package xapi

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Account represents a platform account with credentials for the pool.
type Account struct {
	Username   string
	Password   string
	AuthToken  string
	CSRF       string
	TOTPSecret string
	Proxy      string
	UserAgent  string
	Profile    stealth.BrowserProfile

	active       bool
	reactivateAt time.Time
	client       *stealth.BrowserClient

	mu               sync.Mutex
	csrfRefreshedAt  time.Time
	proxyBackoff     time.Time
	proxyConsecFails int
	rateLimiter      *ratelimit.Limiter

	pool.HealthTracker
}

// ID implements pool.Identity.
func (a *Account) ID() string { return a.Username }

// IsActive implements pool.Identity.
func (a *Account) IsActive() bool { return a.active }

// SetActive implements pool.Identity.
func (a *Account) SetActive(v bool) { a.active = v }

// ReactivateAt implements pool.Identity.
func (a *Account) ReactivateAt() time.Time { return a.reactivateAt }

// SetReactivateAt implements pool.Identity.
func (a *Account) SetReactivateAt(t time.Time) { a.reactivateAt = t }

// CSRFAge returns the time since the csrf token was last refreshed.
func (a *Account) CSRFAge() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.csrfRefreshedAt.IsZero() {
		return 24 * time.Hour
	}
	return time.Since(a.csrfRefreshedAt)
}

// RotateCSRF generates a fresh csrf token and updates the refresh timestamp.
func (a *Account) RotateCSRF() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CSRF = GenerateCSRF()
	a.csrfRefreshedAt = time.Now()
}

// SetCSRF updates the csrf token from a server response.
func (a *Account) SetCSRF(csrf string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CSRF = csrf
	a.csrfRefreshedAt = time.Now()
}

// Credentials returns a snapshot of (authToken, csrf, userAgent) under lock.
func (a *Account) Credentials() (authToken, csrf, userAgent string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.AuthToken, a.CSRF, a.UserAgent
}

// SetCredentials atomically updates auth token and csrf.
func (a *Account) SetCredentials(authToken, csrf string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AuthToken = authToken
	a.CSRF = csrf
	a.csrfRefreshedAt = time.Now()
}

// AllowRequest checks if this account can make a request to the given
// endpoint under its per-endpoint rate limits.
func (a *Account) AllowRequest(endpoint string) bool {
	rl := a.limiter()
	if rl == nil {
		return true
	}
	return rl.Allow(endpoint)
}

// MarkEndpointRateLimited marks an endpoint as rate-limited for this account.
func (a *Account) MarkEndpointRateLimited(endpoint string, until time.Time) {
	if rl := a.limiter(); rl != nil {
		rl.MarkRateLimited(endpoint, until)
	}
}

// IsEndpointRateLimited returns true if the endpoint is currently blocked.
func (a *Account) IsEndpointRateLimited(endpoint string) bool {
	rl := a.limiter()
	if rl == nil {
		return false
	}
	return rl.IsRateLimited(endpoint)
}

func (a *Account) limiter() *ratelimit.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rateLimiter
}

// AssignBrowserProfile sets a browser profile based on index.
func AssignBrowserProfile(acc *Account, idx int) {
	p := stealth.BuiltinProfiles[idx%len(stealth.BuiltinProfiles)]
	acc.Profile = p
	acc.UserAgent = p.UserAgent
}

// ParseAccounts parses a comma-separated list of accounts.
// Format: "user1:pass1,user2:pass2" or "user1:pass1:auth_token:ct0,..."
// or "user1:pass1:auth_token:ct0:totp_secret,...".
func ParseAccounts(raw string) []*Account {
	var accounts []*Account
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 5)
		if len(parts) < 2 {
			slog.Warn("invalid account entry, skipping", slog.String("entry", entry))
			continue
		}
		acc := &Account{
			Username: parts[0],
			Password: parts[1],
			active:   true,
		}
		if len(parts) >= 4 {
			acc.AuthToken = parts[2]
			acc.CSRF = parts[3]
			acc.csrfRefreshedAt = time.Now()
		}
		if len(parts) >= 5 && parts[4] != "" {
			acc.TOTPSecret = parts[4]
		}
		AssignBrowserProfile(acc, len(accounts))
		accounts = append(accounts, acc)
	}
	return accounts
}
