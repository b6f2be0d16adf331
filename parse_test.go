package xapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserLookup(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"__typename": "User",
					"rest_id": "12345",
					"legacy": {
						"name": "Test User",
						"screen_name": "testuser",
						"followers_count": 100,
						"description": "Hello"
					},
					"is_blue_verified": true
				}
			}
		}
	}`

	u, err := parseUserLookup([]byte(body), "UserByScreenName")
	require.NoError(t, err)
	assert.Equal(t, "12345", u.ID)
	assert.Equal(t, "testuser", u.Handle)
	assert.True(t, u.IsVerified)
}

func TestParseUserLookupAPIError(t *testing.T) {
	body := `{"errors": [{"message": "Not found"}]}`
	_, err := parseUserLookup([]byte(body), "UserByRestId")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not found")
}

func TestParseUserTimeline(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"timeline": {
						"timeline": {
							"instructions": [{
								"type": "TimelineAddEntries",
								"entries": [
									{
										"entryId": "user-1",
										"content": {
											"entryType": "TimelineTimelineItem",
											"itemContent": {
												"__typename": "TimelineUser",
												"user_results": {"result": {"rest_id": "1", "legacy": {"screen_name": "alice"}}}
											}
										}
									},
									{
										"entryId": "cursor-bottom-2",
										"content": {
											"entryType": "TimelineTimelineCursor",
											"cursorType": "Bottom",
											"value": "page-2"
										}
									}
								]
							}]
						}
					}
				}
			}
		}
	}`

	page, err := parseUserTimeline([]byte(body))
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "alice", page.Users[0].Handle)
	assert.Equal(t, "page-2", page.NextCursor)
}

func TestParseTweetUserTimeline(t *testing.T) {
	mk := func(key string) string {
		return `{
			"data": {
				"` + key + `": {
					"timeline": {
						"instructions": [{
							"type": "TimelineAddEntries",
							"entries": [{
								"entryId": "user-9",
								"content": {
									"entryType": "TimelineTimelineItem",
									"itemContent": {
										"__typename": "TimelineUser",
										"user_results": {"result": {"rest_id": "9", "legacy": {"screen_name": "bob"}}}
									}
								}
							}]
						}]
					}
				}
			}
		}`
	}

	for _, key := range []string{"retweeters_timeline", "favoriters_timeline"} {
		page, err := parseTweetUserTimeline([]byte(mk(key)))
		require.NoError(t, err, key)
		require.Len(t, page.Users, 1, key)
		assert.Equal(t, "9", page.Users[0].ID, key)
	}
}

func TestParseSearchTimelineTweets(t *testing.T) {
	body := `{
		"data": {
			"search_by_raw_query": {
				"search_timeline": {
					"timeline": {
						"instructions": [{
							"type": "TimelineAddEntries",
							"entries": [{
								"entryId": "tweet-123",
								"content": {
									"entryType": "TimelineTimelineItem",
									"itemContent": {
										"__typename": "TimelineTweet",
										"tweet_results": {
											"result": {
												"__typename": "Tweet",
												"rest_id": "123",
												"legacy": {
													"full_text": "hello",
													"created_at": "Mon Jan 02 15:04:05 +0000 2024",
													"favorite_count": 10,
													"user_id_str": "999"
												},
												"views": {"count": "1000"}
											}
										}
									}
								}
							}]
						}]
					}
				}
			}
		}
	}`

	tl, err := parseSearchTimeline([]byte(body))
	require.NoError(t, err)

	page := tweetPageFrom(tl, "")
	require.Len(t, page.Tweets, 1)
	tw := page.Tweets[0]
	assert.Equal(t, "123", tw.ID)
	assert.Equal(t, "999", tw.AuthorID)
	assert.Equal(t, 1000, tw.Views)
	assert.Equal(t, 10, tw.Likes)

	// The same timeline yields no users under the user kind.
	assert.Empty(t, userPageFrom(tl).Users)
}

func TestParseConversation(t *testing.T) {
	body := `{
		"data": {
			"threaded_conversation_with_injections_v2": {
				"instructions": [{
					"type": "TimelineAddEntries",
					"entries": [
						{
							"entryId": "tweet-100",
							"content": {
								"entryType": "TimelineTimelineItem",
								"itemContent": {
									"__typename": "TimelineTweet",
									"tweet_results": {"result": {"rest_id": "100", "legacy": {"full_text": "focal", "user_id_str": "1"}}}
								}
							}
						},
						{
							"entryId": "conversationthread-101",
							"content": {
								"entryType": "TimelineTimelineModule",
								"items": [{
									"entryId": "reply-101",
									"item": {
										"itemContent": {
											"__typename": "TimelineTweet",
											"tweet_results": {"result": {"rest_id": "101", "legacy": {"full_text": "reply", "in_reply_to_status_id_str": "100", "user_id_str": "2"}}}
										}
									}
								}]
							}
						},
						{
							"entryId": "cursor-bottom-x",
							"content": {
								"entryType": "TimelineTimelineCursor",
								"cursorType": "Bottom",
								"value": "more-replies"
							}
						}
					]
				}]
			}
		}
	}`

	conv, err := parseConversation([]byte(body), "100")
	require.NoError(t, err)
	require.NotNil(t, conv.Tweet)
	assert.Equal(t, "100", conv.Tweet.ID)
	require.Len(t, conv.Replies, 1)
	assert.Equal(t, "101", conv.Replies[0].ID)
	assert.Equal(t, "100", conv.Replies[0].InReplyToID)
	assert.Equal(t, "more-replies", conv.NextCursor)
}

func TestParseCreateTweet(t *testing.T) {
	body := `{"data": {"create_tweet": {"tweet_results": {"result": {"rest_id": "555"}}}}}`
	id, err := parseCreateTweet([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "555", id)
}

func TestParseCreateTweetError(t *testing.T) {
	body := `{"errors": [{"message": "Status is a duplicate"}]}`
	_, err := parseCreateTweet([]byte(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParseCreateTweetEmptyID(t *testing.T) {
	_, err := parseCreateTweet([]byte(`{"data": {}}`))
	assert.Error(t, err)
}
