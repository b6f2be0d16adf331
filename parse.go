package xapi

import (
	"encoding/json"
	"fmt"

	"github.com/anatolykoptev/go-xapi/timeline"
)

// The platform nests the timeline envelope differently per operation.
// Each parse function peels the operation-specific wrapper and hands the
// inner timeline to the shared extraction pipeline.

// parseUserLookup parses UserByScreenName / UserByRestId responses.
func parseUserLookup(body []byte, operation string) (*User, error) {
	var raw struct {
		Data struct {
			User struct {
				Result userResult `json:"result"`
			} `json:"user"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", operation, err)
	}
	if len(raw.Errors) > 0 {
		return nil, fmt.Errorf("%s API error: %s", operation, raw.Errors[0].Message)
	}
	return flattenUser(raw.Data.User.Result)
}

// parseUserTimeline parses Followers/Following responses into a user page.
func parseUserTimeline(body []byte) (*UserPage, error) {
	var raw struct {
		Data struct {
			User struct {
				Result struct {
					Timeline struct {
						Timeline timeline.Timeline `json:"timeline"`
					} `json:"timeline"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user timeline: %w", err)
	}
	return userPageFrom(raw.Data.User.Result.Timeline.Timeline), nil
}

// parseTweetUserTimeline parses Retweeters/Favoriters responses. Older
// deployments nest these under the user envelope instead.
func parseTweetUserTimeline(body []byte) (*UserPage, error) {
	var raw struct {
		Data struct {
			RetweetersTimeline struct {
				Timeline timeline.Timeline `json:"timeline"`
			} `json:"retweeters_timeline"`
			FavoritersTimeline struct {
				Timeline timeline.Timeline `json:"timeline"`
			} `json:"favoriters_timeline"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tweet user timeline: %w", err)
	}
	tl := raw.Data.RetweetersTimeline.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.FavoritersTimeline.Timeline
	}
	if len(tl.Instructions) == 0 {
		return parseUserTimeline(body)
	}
	return userPageFrom(tl), nil
}

// parseUserTweets parses UserTweets responses into a tweet page.
func parseUserTweets(body []byte, authorID string) (*TweetPage, error) {
	var raw struct {
		Data struct {
			User struct {
				Result struct {
					Timeline struct {
						Timeline timeline.Timeline `json:"timeline"`
					} `json:"timeline"`
					TimelineV2 struct {
						Timeline timeline.Timeline `json:"timeline"`
					} `json:"timeline_v2"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user tweets: %w", err)
	}
	tl := raw.Data.User.Result.Timeline.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.User.Result.TimelineV2.Timeline
	}
	return tweetPageFrom(tl, authorID), nil
}

// parseSearchTimeline parses SearchTimeline responses into tweets or
// users depending on the requested product.
func parseSearchTimeline(body []byte) (timeline.Timeline, error) {
	var raw struct {
		Data struct {
			SearchByRawQuery struct {
				SearchTimeline struct {
					Timeline timeline.Timeline `json:"timeline"`
				} `json:"search_timeline"`
			} `json:"search_by_raw_query"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return timeline.Timeline{}, fmt.Errorf("unmarshal search timeline: %w", err)
	}
	return raw.Data.SearchByRawQuery.SearchTimeline.Timeline, nil
}

// parseConversation parses a TweetDetail response into the focal tweet and
// its replies.
func parseConversation(body []byte, tweetID string) (*Conversation, error) {
	var raw struct {
		Data struct {
			ThreadedConversation timeline.Timeline `json:"threaded_conversation_with_injections_v2"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}

	items, cursors := timeline.Collect(raw.Data.ThreadedConversation, timeline.KindTweet)
	tweets := decodeTweetItems(items, "")

	conv := &Conversation{NextCursor: cursors.Bottom}
	for _, t := range tweets {
		if t.ID == tweetID {
			conv.Tweet = t
			continue
		}
		conv.Replies = append(conv.Replies, t)
	}
	return conv, nil
}

// parseCreateTweet extracts the tweet ID from a CreateTweet mutation
// response.
func parseCreateTweet(body []byte) (string, error) {
	var raw struct {
		Data struct {
			CreateTweet struct {
				TweetResults struct {
					Result struct {
						RestID string `json:"rest_id"`
					} `json:"result"`
				} `json:"tweet_results"`
			} `json:"create_tweet"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("unmarshal CreateTweet: %w", err)
	}
	if len(raw.Errors) > 0 {
		return "", fmt.Errorf("CreateTweet API error: %s", raw.Errors[0].Message)
	}
	tweetID := raw.Data.CreateTweet.TweetResults.Result.RestID
	if tweetID == "" {
		return "", fmt.Errorf("CreateTweet returned empty tweet ID: %s", truncateBytes(body, 300))
	}
	return tweetID, nil
}

// userPageFrom runs the extraction pipeline for user listings.
func userPageFrom(tl timeline.Timeline) *UserPage {
	items, cursors := timeline.Collect(tl, timeline.KindUser)
	return &UserPage{
		Users:      decodeUserItems(items),
		NextCursor: cursors.Bottom,
	}
}

// tweetPageFrom runs the extraction pipeline for tweet listings.
func tweetPageFrom(tl timeline.Timeline, defaultAuthorID string) *TweetPage {
	items, cursors := timeline.Collect(tl, timeline.KindTweet)
	return &TweetPage{
		Tweets:     decodeTweetItems(items, defaultAuthorID),
		NextCursor: cursors.Bottom,
	}
}
