package xapi

import (
	"context"
	"fmt"
)

// GetUserTweets fetches one page of recent tweets for a user.
func (c *Client) GetUserTweets(ctx context.Context, userID string, count int, cursor string) (*TweetPage, error) {
	variables := map[string]any{
		"userId":                                 userID,
		"count":                                  count,
		"includePromotedContent":                 false,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.getOperation(ctx, "UserTweets", variables)
	if err != nil {
		return nil, err
	}
	page, err := parseUserTweets(body, userID)
	if err != nil {
		return nil, fmt.Errorf("parse UserTweets: %w", err)
	}
	return page, nil
}

// SearchProduct selects the search ranking tab.
type SearchProduct string

const (
	SearchLatest SearchProduct = "Latest"
	SearchTop    SearchProduct = "Top"
)

// SearchTweets searches recent tweets matching a query (one page).
func (c *Client) SearchTweets(ctx context.Context, query string, count int, cursor string) (*TweetPage, error) {
	return c.SearchTweetsProduct(ctx, query, count, cursor, SearchLatest)
}

// SearchTweetsProduct searches tweets under a specific ranking product.
func (c *Client) SearchTweetsProduct(ctx context.Context, query string, count int, cursor string, product SearchProduct) (*TweetPage, error) {
	body, err := c.searchOperation(ctx, query, count, cursor, string(product))
	if err != nil {
		return nil, err
	}
	tl, err := parseSearchTimeline(body)
	if err != nil {
		return nil, fmt.Errorf("parse SearchTimeline: %w", err)
	}
	return tweetPageFrom(tl, ""), nil
}

// SearchAllTweets follows cursors until maxCount tweets are collected or
// the listing is exhausted.
func (c *Client) SearchAllTweets(ctx context.Context, query string, maxCount int) ([]*Tweet, error) {
	var tweets []*Tweet
	var cursor string

	for {
		select {
		case <-ctx.Done():
			return tweets, ctx.Err()
		default:
		}

		page, err := c.SearchTweets(ctx, query, min(20, maxCount-len(tweets)), cursor)
		if err != nil {
			return tweets, err
		}
		tweets = append(tweets, page.Tweets...)

		if page.NextCursor == "" || len(page.Tweets) == 0 || len(tweets) >= maxCount {
			return tweets, nil
		}
		cursor = page.NextCursor
	}
}

// searchOperation runs the shared SearchTimeline endpoint; product selects
// tweet ("Latest"/"Top") versus user ("People") results.
func (c *Client) searchOperation(ctx context.Context, query string, count int, cursor, product string) ([]byte, error) {
	variables := map[string]any{
		"rawQuery":    query,
		"count":       count,
		"querySource": "typed_query",
		"product":     product,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": false,
	}
	return c.getOperation(ctx, "SearchTimeline", variables, fieldToggles)
}

// GetTweet fetches a single tweet by ID.
func (c *Client) GetTweet(ctx context.Context, tweetID string) (*Tweet, error) {
	conv, err := c.GetConversation(ctx, tweetID, "")
	if err != nil {
		return nil, err
	}
	if conv.Tweet == nil {
		return nil, fmt.Errorf("tweet %s not present in conversation", tweetID)
	}
	return conv.Tweet, nil
}

// GetConversation fetches a tweet and one page of its reply thread.
func (c *Client) GetConversation(ctx context.Context, tweetID string, cursor string) (*Conversation, error) {
	variables := map[string]any{
		"focalTweetId":                           tweetID,
		"with_rux_injections":                    false,
		"includePromotedContent":                 false,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.getOperation(ctx, "TweetDetail", variables)
	if err != nil {
		return nil, err
	}
	conv, err := parseConversation(body, tweetID)
	if err != nil {
		return nil, fmt.Errorf("parse TweetDetail: %w", err)
	}
	return conv, nil
}

// GetTweetReplies fetches one page of replies to a tweet.
func (c *Client) GetTweetReplies(ctx context.Context, tweetID string, cursor string) (*TweetPage, error) {
	conv, err := c.GetConversation(ctx, tweetID, cursor)
	if err != nil {
		return nil, err
	}
	return &TweetPage{Tweets: conv.Replies, NextCursor: conv.NextCursor}, nil
}
