package xapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenUser(t *testing.T) {
	var r userResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"__typename": "User",
		"id": "VXNlcjoxMjM0NQ==",
		"rest_id": "12345",
		"legacy": {
			"name": "Test User",
			"screen_name": "testuser",
			"followers_count": 100,
			"friends_count": 50,
			"statuses_count": 200,
			"listed_count": 5,
			"created_at": "Mon Jan 02 15:04:05 +0000 2020",
			"verified": false,
			"protected": true,
			"description": "  Hello world  ",
			"profile_image_url_https": "https://pbs.twimg.com/profile_images/123/photo.jpg"
		},
		"is_blue_verified": true
	}`), &r))

	u, err := flattenUser(r)
	require.NoError(t, err)
	assert.Equal(t, "12345", u.ID)
	assert.Equal(t, "testuser", u.Handle)
	assert.Equal(t, "Test User", u.DisplayName)
	assert.Equal(t, "Hello world", u.Bio)
	assert.Equal(t, 100, u.Followers)
	assert.Equal(t, 50, u.Following)
	assert.True(t, u.IsVerified)
	assert.True(t, u.IsProtected)
	assert.Equal(t, 2020, u.CreatedAt.Year())
}

func TestFlattenUserUnavailable(t *testing.T) {
	_, err := flattenUser(userResult{TypeName: "UserUnavailable"})
	assert.Error(t, err)
}

func TestFlattenUserEmptyRestID(t *testing.T) {
	_, err := flattenUser(userResult{TypeName: "User"})
	assert.Error(t, err)
}

func TestFlattenUserDefaultAvatar(t *testing.T) {
	var r userResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"rest_id": "1",
		"legacy": {"profile_image_url_https": "https://abs.twimg.com/sticky/default_profile_images/default_profile_normal.png"}
	}`), &r))

	u, err := flattenUser(r)
	require.NoError(t, err)
	assert.Empty(t, u.AvatarURL)
}

func TestFlattenTweet(t *testing.T) {
	var r tweetResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"__typename": "Tweet",
		"rest_id": "123",
		"legacy": {
			"full_text": "Hello world",
			"created_at": "Mon Jan 02 15:04:05 +0000 2024",
			"conversation_id_str": "120",
			"in_reply_to_status_id_str": "121",
			"favorite_count": 10,
			"retweet_count": 5,
			"quote_count": 2,
			"reply_count": 7,
			"user_id_str": "999"
		},
		"views": {"count": "1000"}
	}`), &r))

	tw, err := flattenTweet(r, "")
	require.NoError(t, err)
	assert.Equal(t, "123", tw.ID)
	assert.Equal(t, "999", tw.AuthorID)
	assert.Equal(t, "120", tw.ConversationID)
	assert.Equal(t, "121", tw.InReplyToID)
	assert.Equal(t, 1000, tw.Views)
	assert.Equal(t, 10, tw.Likes)
	assert.Equal(t, 5, tw.Retweets)
	assert.Equal(t, 2, tw.Quotes)
	assert.Equal(t, 7, tw.Replies)
	assert.Equal(t, time.January, tw.CreatedAt.Month())
}

func TestFlattenTweetDefaultAuthor(t *testing.T) {
	tw, err := flattenTweet(tweetResult{RestID: "5"}, "777")
	require.NoError(t, err)
	assert.Equal(t, "777", tw.AuthorID)
}

func TestFlattenTweetVisibilityWrapper(t *testing.T) {
	var r tweetResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"__typename": "TweetWithVisibilityResults",
		"tweet": {
			"rest_id": "42",
			"legacy": {"full_text": "wrapped", "user_id_str": "9"}
		}
	}`), &r))

	tw, err := flattenTweet(r, "")
	require.NoError(t, err)
	assert.Equal(t, "42", tw.ID)
	assert.Equal(t, "wrapped", tw.Text)
}

func TestFlattenTweetEmptyRestID(t *testing.T) {
	_, err := flattenTweet(tweetResult{}, "")
	assert.Error(t, err)
}

func TestDecodeItemsSkipMalformed(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"__typename": "TimelineTweet", "tweet_results": {"result": {"rest_id": "1"}}}`),
		json.RawMessage(`{"__typename": "TimelineTweet", "tweet_results": {"result": {}}}`),
	}
	tweets := decodeTweetItems(raws, "")
	assert.Len(t, tweets, 1)

	users := decodeUserItems([]json.RawMessage{
		json.RawMessage(`{"user_results": {"result": {"rest_id": "7", "legacy": {"screen_name": "a"}}}}`),
		json.RawMessage(`{"user_results": {"result": {"__typename": "UserUnavailable"}}}`),
	})
	assert.Len(t, users, 1)
}
