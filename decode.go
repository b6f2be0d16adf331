package xapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// createdAtLayout is the legacy timestamp format used across the API.
const createdAtLayout = "Mon Jan 02 15:04:05 +0000 2006"

// userResult is the raw entity node for a user, prior to flattening.
type userResult struct {
	TypeName string `json:"__typename"`
	ID       string `json:"id"`
	RestID   string `json:"rest_id"`
	Legacy   struct {
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		FollowersCount  int    `json:"followers_count"`
		FriendsCount    int    `json:"friends_count"`
		StatusesCount   int    `json:"statuses_count"`
		ListedCount     int    `json:"listed_count"`
		CreatedAt       string `json:"created_at"`
		Verified        bool   `json:"verified"`
		Protected       bool   `json:"protected"`
		Description     string `json:"description"`
		ProfileImageURL string `json:"profile_image_url_https"`
	} `json:"legacy"`
	IsBlueVerified bool `json:"is_blue_verified"`
}

// tweetResult is the raw entity node for a tweet. Limited-visibility
// tweets arrive wrapped one level deeper.
type tweetResult struct {
	TypeName string       `json:"__typename"`
	RestID   string       `json:"rest_id"`
	Tweet    *tweetResult `json:"tweet"`
	Core     struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy struct {
		FullText             string `json:"full_text"`
		CreatedAt            string `json:"created_at"`
		ConversationIDStr    string `json:"conversation_id_str"`
		InReplyToStatusIDStr string `json:"in_reply_to_status_id_str"`
		FavoriteCount        int    `json:"favorite_count"`
		RetweetCount         int    `json:"retweet_count"`
		QuoteCount           int    `json:"quote_count"`
		ReplyCount           int    `json:"reply_count"`
		UserIDStr            string `json:"user_id_str"`
	} `json:"legacy"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

// flattenUser maps a raw user node into a User record.
func flattenUser(r userResult) (*User, error) {
	if r.TypeName == "UserUnavailable" {
		return nil, fmt.Errorf("user unavailable (suspended or restricted)")
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty user rest_id (typename=%s)", r.TypeName)
	}
	var createdAt time.Time
	if r.Legacy.CreatedAt != "" {
		if t, err := time.Parse(createdAtLayout, r.Legacy.CreatedAt); err == nil {
			createdAt = t
		}
	}
	avatar := r.Legacy.ProfileImageURL
	if strings.Contains(avatar, "default_profile") {
		avatar = ""
	}
	return &User{
		ID:          r.RestID,
		Handle:      r.Legacy.ScreenName,
		DisplayName: r.Legacy.Name,
		Bio:         strings.TrimSpace(r.Legacy.Description),
		AvatarURL:   avatar,
		Followers:   r.Legacy.FollowersCount,
		Following:   r.Legacy.FriendsCount,
		TweetCount:  r.Legacy.StatusesCount,
		ListedCount: r.Legacy.ListedCount,
		CreatedAt:   createdAt,
		IsVerified:  r.Legacy.Verified || r.IsBlueVerified,
		IsProtected: r.Legacy.Protected,
	}, nil
}

// flattenTweet maps a raw tweet node into a Tweet record. defaultAuthorID
// fills the author when the node omits user_id_str (own-timeline listings).
func flattenTweet(r tweetResult, defaultAuthorID string) (*Tweet, error) {
	if r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil {
		return flattenTweet(*r.Tweet, defaultAuthorID)
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty tweet rest_id (typename=%s)", r.TypeName)
	}

	authorID := defaultAuthorID
	if r.Legacy.UserIDStr != "" {
		authorID = r.Legacy.UserIDStr
	}

	var createdAt time.Time
	if r.Legacy.CreatedAt != "" {
		if t, err := time.Parse(createdAtLayout, r.Legacy.CreatedAt); err == nil {
			createdAt = t
		}
	}

	views := 0
	if r.Views.Count != "" {
		views, _ = strconv.Atoi(r.Views.Count)
	}

	return &Tweet{
		ID:             r.RestID,
		AuthorID:       authorID,
		ConversationID: r.Legacy.ConversationIDStr,
		InReplyToID:    r.Legacy.InReplyToStatusIDStr,
		Text:           r.Legacy.FullText,
		CreatedAt:      createdAt,
		Views:          views,
		Likes:          r.Legacy.FavoriteCount,
		Retweets:       r.Legacy.RetweetCount,
		Quotes:         r.Legacy.QuoteCount,
		Replies:        r.Legacy.ReplyCount,
	}, nil
}

// decodeUserItems flattens extracted TimelineUser nodes. Individually
// malformed nodes are skipped.
func decodeUserItems(raws []json.RawMessage) []*User {
	var users []*User
	for _, raw := range raws {
		var item struct {
			UserResults struct {
				Result userResult `json:"result"`
			} `json:"user_results"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		u, err := flattenUser(item.UserResults.Result)
		if err != nil {
			slog.Debug("skip user parse error", slog.Any("error", err))
			continue
		}
		users = append(users, u)
	}
	return users
}

// decodeTweetItems flattens extracted TimelineTweet nodes.
func decodeTweetItems(raws []json.RawMessage, defaultAuthorID string) []*Tweet {
	var tweets []*Tweet
	for _, raw := range raws {
		var item struct {
			TweetResults struct {
				Result tweetResult `json:"result"`
			} `json:"tweet_results"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		t, err := flattenTweet(item.TweetResults.Result, defaultAuthorID)
		if err != nil {
			slog.Debug("skip tweet parse error", slog.Any("error", err))
			continue
		}
		tweets = append(tweets, t)
	}
	return tweets
}
