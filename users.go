package xapi

import (
	"context"
	"fmt"
)

// GetUserByScreenName fetches a user profile by handle.
func (c *Client) GetUserByScreenName(ctx context.Context, handle string) (*User, error) {
	variables := map[string]any{
		"screen_name":              handle,
		"withSafetyModeUserFields": true,
	}
	body, err := c.getOperation(ctx, "UserByScreenName", variables)
	if err != nil {
		return nil, err
	}
	return parseUserLookup(body, "UserByScreenName")
}

// GetUserByID fetches a user profile by numeric ID.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*User, error) {
	variables := map[string]any{
		"userId":                   userID,
		"withSafetyModeUserFields": true,
	}
	body, err := c.getOperation(ctx, "UserByRestId", variables)
	if err != nil {
		return nil, err
	}
	return parseUserLookup(body, "UserByRestId")
}

// GetFollowers fetches one page of a user's followers.
func (c *Client) GetFollowers(ctx context.Context, userID string, count int, cursor string) (*UserPage, error) {
	return c.getUserListPage(ctx, "Followers", userID, count, cursor)
}

// GetFollowing fetches one page of the accounts a user follows.
func (c *Client) GetFollowing(ctx context.Context, userID string, count int, cursor string) (*UserPage, error) {
	return c.getUserListPage(ctx, "Following", userID, count, cursor)
}

// getUserListPage is the shared fetcher for user-centric user listings.
func (c *Client) getUserListPage(ctx context.Context, operation, userID string, count int, cursor string) (*UserPage, error) {
	variables := map[string]any{
		"userId":                 userID,
		"count":                  min(100, count),
		"includePromotedContent": false,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.getOperation(ctx, operation, variables)
	if err != nil {
		return nil, err
	}
	page, err := parseUserTimeline(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", operation, err)
	}
	return page, nil
}

// GetRetweeters fetches one page of users who retweeted a tweet.
func (c *Client) GetRetweeters(ctx context.Context, tweetID string, count int, cursor string) (*UserPage, error) {
	return c.getTweetUserListPage(ctx, "Retweeters", tweetID, count, cursor)
}

// GetLikers fetches one page of users who liked a tweet.
func (c *Client) GetLikers(ctx context.Context, tweetID string, count int, cursor string) (*UserPage, error) {
	return c.getTweetUserListPage(ctx, "Favoriters", tweetID, count, cursor)
}

// getTweetUserListPage is the shared fetcher for tweet-centric user
// listings.
func (c *Client) getTweetUserListPage(ctx context.Context, operation, tweetID string, count int, cursor string) (*UserPage, error) {
	variables := map[string]any{
		"tweetId":                tweetID,
		"count":                  min(20, count),
		"includePromotedContent": true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.getOperation(ctx, operation, variables)
	if err != nil {
		return nil, err
	}
	page, err := parseTweetUserTimeline(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", operation, err)
	}
	return page, nil
}

// SearchUsers searches accounts matching a query (one page).
func (c *Client) SearchUsers(ctx context.Context, query string, count int, cursor string) (*UserPage, error) {
	body, err := c.searchOperation(ctx, query, count, cursor, "People")
	if err != nil {
		return nil, err
	}
	tl, err := parseSearchTimeline(body)
	if err != nil {
		return nil, fmt.Errorf("parse SearchTimeline: %w", err)
	}
	return userPageFrom(tl), nil
}

// GetAllFollowers follows cursors until maxCount followers are collected
// or the listing is exhausted.
func (c *Client) GetAllFollowers(ctx context.Context, userID string, maxCount int) ([]*User, error) {
	return c.collectUsers(ctx, maxCount, func(cursor string, remaining int) (*UserPage, error) {
		return c.GetFollowers(ctx, userID, remaining, cursor)
	})
}

// GetAllFollowing follows cursors until maxCount followed accounts are
// collected or the listing is exhausted.
func (c *Client) GetAllFollowing(ctx context.Context, userID string, maxCount int) ([]*User, error) {
	return c.collectUsers(ctx, maxCount, func(cursor string, remaining int) (*UserPage, error) {
		return c.GetFollowing(ctx, userID, remaining, cursor)
	})
}

// GetAllRetweeters follows cursors until maxCount retweeters are collected
// or the listing is exhausted.
func (c *Client) GetAllRetweeters(ctx context.Context, tweetID string, maxCount int) ([]*User, error) {
	return c.collectUsers(ctx, maxCount, func(cursor string, remaining int) (*UserPage, error) {
		return c.GetRetweeters(ctx, tweetID, remaining, cursor)
	})
}

// GetAllLikers follows cursors until maxCount likers are collected or the
// listing is exhausted.
func (c *Client) GetAllLikers(ctx context.Context, tweetID string, maxCount int) ([]*User, error) {
	return c.collectUsers(ctx, maxCount, func(cursor string, remaining int) (*UserPage, error) {
		return c.GetLikers(ctx, tweetID, remaining, cursor)
	})
}

// collectUsers drives a page fetcher through cursors up to maxCount users.
// An empty page ends the loop even when a cursor is present, since the
// platform keeps returning the terminal cursor forever.
func (c *Client) collectUsers(ctx context.Context, maxCount int, fetch func(cursor string, remaining int) (*UserPage, error)) ([]*User, error) {
	var users []*User
	var cursor string

	for {
		select {
		case <-ctx.Done():
			return users, ctx.Err()
		default:
		}

		page, err := fetch(cursor, maxCount-len(users))
		if err != nil {
			return users, err
		}
		users = append(users, page.Users...)

		if page.NextCursor == "" || len(page.Users) == 0 || len(users) >= maxCount {
			return users, nil
		}
		cursor = page.NextCursor
	}
}

// getOperation builds the GraphQL URL for an operation and executes it.
func (c *Client) getOperation(ctx context.Context, operation string, variables map[string]any, fieldToggles ...map[string]any) ([]byte, error) {
	url, err := EndpointURL(operation)
	if err != nil {
		return nil, err
	}
	url = addGraphQLParams(url, variables, Endpoints[operation].Features, fieldToggles...)

	body, _, err := c.doGET(ctx, operation, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return body, nil
}
