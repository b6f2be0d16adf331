package xapi

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGraphQLParams(t *testing.T) {
	url := addGraphQLParams("https://x.com/i/api/graphql/abc/Op",
		map[string]any{"count": 20},
		map[string]any{"flag": true})
	assert.Contains(t, url, "?variables=")
	assert.Contains(t, url, "&features=")
	assert.Contains(t, url, "%7B%22count%22%3A20%7D")
	assert.NotContains(t, url, "fieldToggles")

	withToggles := addGraphQLParams("https://x.com/i/api/graphql/abc/Op",
		map[string]any{}, map[string]any{},
		map[string]any{"withArticleRichContentState": false})
	assert.Contains(t, withToggles, "&fieldToggles=")

	// Existing query strings get & as separator.
	appended := addGraphQLParams("https://x.com/i/api/graphql/abc/Op?x=1",
		map[string]any{}, map[string]any{})
	assert.Contains(t, appended, "?x=1&variables=")
}

func TestJSONEscape(t *testing.T) {
	got := jsonEscape([]byte(`{"a":["b","c"], "d":1}`))
	assert.Equal(t, `%7B%22a%22%3A%5B%22b%22%2C%22c%22%5D%2C%20%22d%22%3A1%7D`, got)
}

func TestRequiresAuth(t *testing.T) {
	for _, op := range []string{
		"Followers", "Following", "Retweeters", "Favoriters",
		"CreateTweet", "DeleteTweet", "FavoriteTweet", "UnfavoriteTweet",
		"CreateRetweet", "DeleteRetweet", "Follow", "Unfollow", "SendDM",
	} {
		assert.True(t, requiresAuth(op), op)
	}
	for _, op := range []string{"UserByScreenName", "UserByRestId", "UserTweets", "SearchTimeline", "TweetDetail"} {
		assert.False(t, requiresAuth(op), op)
	}
}

func TestRecoverAuthLogsReason(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	// No password and no saved session, so relogin fails without any
	// network traffic.
	acc := &Account{Username: "alice", active: true}
	c := &Client{
		pool: pool.New([]*Account{acc}, pool.Config{}),
		cfg:  ClientConfig{SessionDir: t.TempDir(), AuthCooldown: time.Minute},
	}

	run := func(string, string, string) ([]byte, map[string]string, int, error) {
		t.Fatal("request must not run after failed relogin")
		return nil, nil, 0, nil
	}

	_, _, err := c.recoverAuth(acc, "TweetDetail", "account locked (code 326)", run)
	require.Error(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "account locked (code 326)")
	assert.NotContains(t, logs, "auth expired")
}

func TestIsProxyError(t *testing.T) {
	assert.False(t, isProxyError(nil))
	assert.False(t, isProxyError(assert.AnError))
	assert.True(t, isProxyError(errors.New("dial tcp: connection refused")))
	assert.True(t, isProxyError(errors.New("SOCKS5 handshake failed")))
	assert.True(t, isProxyError(errors.New("proxy authentication required")))
}

func TestTruncateBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncateBytes([]byte("abcdef"), 2))
}

func TestHasResponseData(t *testing.T) {
	assert.True(t, hasResponseData([]byte(`{"data":{"user":{}}}`)))
	assert.False(t, hasResponseData([]byte(`{"data":null}`)))
	assert.False(t, hasResponseData([]byte(`{"errors":[]}`)))
	assert.False(t, hasResponseData([]byte(`not json`)))
}
