package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// CreateTweet posts a new tweet and returns its ID.
func (c *Client) CreateTweet(ctx context.Context, text string) (string, error) {
	return c.createTweet(ctx, text, "")
}

// ReplyToTweet posts a reply to an existing tweet and returns the reply ID.
func (c *Client) ReplyToTweet(ctx context.Context, inReplyToID, text string) (string, error) {
	return c.createTweet(ctx, text, inReplyToID)
}

func (c *Client) createTweet(ctx context.Context, text, inReplyToID string) (string, error) {
	variables := map[string]any{
		"tweet_text":   text,
		"dark_request": false,
		"media": map[string]any{
			"media_entities":     []any{},
			"possibly_sensitive": false,
		},
		"semantic_annotation_ids": []any{},
	}
	if inReplyToID != "" {
		variables["reply"] = map[string]any{
			"in_reply_to_tweet_id":   inReplyToID,
			"exclude_reply_user_ids": []any{},
		}
	}
	body, err := c.postMutation(ctx, "CreateTweet", variables)
	if err != nil {
		return "", err
	}
	return parseCreateTweet(body)
}

// DeleteTweet deletes a tweet owned by one of the pool accounts.
func (c *Client) DeleteTweet(ctx context.Context, tweetID string) error {
	_, err := c.postMutation(ctx, "DeleteTweet", map[string]any{
		"tweet_id":     tweetID,
		"dark_request": false,
	})
	return err
}

// LikeTweet likes a tweet. Liking an already-liked tweet is not an error.
func (c *Client) LikeTweet(ctx context.Context, tweetID string) error {
	_, err := c.postMutation(ctx, "FavoriteTweet", map[string]any{"tweet_id": tweetID})
	return err
}

// UnlikeTweet removes a like from a tweet.
func (c *Client) UnlikeTweet(ctx context.Context, tweetID string) error {
	_, err := c.postMutation(ctx, "UnfavoriteTweet", map[string]any{"tweet_id": tweetID})
	return err
}

// Retweet retweets a tweet.
func (c *Client) Retweet(ctx context.Context, tweetID string) error {
	_, err := c.postMutation(ctx, "CreateRetweet", map[string]any{
		"tweet_id":     tweetID,
		"dark_request": false,
	})
	return err
}

// Unretweet removes a retweet.
func (c *Client) Unretweet(ctx context.Context, tweetID string) error {
	_, err := c.postMutation(ctx, "DeleteRetweet", map[string]any{
		"source_tweet_id": tweetID,
		"dark_request":    false,
	})
	return err
}

// FollowUser follows a user by numeric ID via the REST 1.1 endpoint.
func (c *Client) FollowUser(ctx context.Context, userID string) error {
	form := url.Values{}
	form.Set("user_id", userID)
	form.Set("follow", "true")
	_, err := c.doPOST(ctx, "Follow", followURL, []byte(form.Encode()), true)
	if err != nil {
		return fmt.Errorf("Follow: %w", err)
	}
	return nil
}

// UnfollowUser unfollows a user by numeric ID.
func (c *Client) UnfollowUser(ctx context.Context, userID string) error {
	form := url.Values{}
	form.Set("user_id", userID)
	_, err := c.doPOST(ctx, "Unfollow", unfollowURL, []byte(form.Encode()), true)
	if err != nil {
		return fmt.Errorf("Unfollow: %w", err)
	}
	return nil
}

// SendDirectMessage sends a DM into a conversation. conversationID is the
// platform's "<lowerUserID>-<higherUserID>" pair form for one-to-one
// conversations.
func (c *Client) SendDirectMessage(ctx context.Context, conversationID, text string) error {
	payload, err := json.Marshal(map[string]any{
		"conversation_id":     conversationID,
		"recipient_ids":       false,
		"request_id":          GenerateCSRF()[:32],
		"text":                text,
		"cards_platform":      "Web-12",
		"include_cards":       1,
		"include_quote_count": true,
		"dm_users":            false,
	})
	if err != nil {
		return err
	}
	_, err = c.doPOST(ctx, "SendDM", sendDMURL, payload, false)
	if err != nil {
		return fmt.Errorf("SendDM: %w", err)
	}
	return nil
}

// DMConversationID builds the canonical one-to-one conversation ID for two
// numeric user IDs (smaller ID first).
func DMConversationID(userA, userB string) string {
	if len(userA) > len(userB) || (len(userA) == len(userB) && userA > userB) {
		userA, userB = userB, userA
	}
	return userA + "-" + userB
}

// postMutation posts a GraphQL mutation with the operation's query ID and
// feature flags in the body, as the web app does.
func (c *Client) postMutation(ctx context.Context, operation string, variables map[string]any) ([]byte, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	payload, err := json.Marshal(map[string]any{
		"variables": variables,
		"features":  ep.Features,
		"queryId":   ep.ID,
	})
	if err != nil {
		return nil, err
	}
	body, err := c.doPOST(ctx, operation, ep.URL(), payload, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return body, nil
}
