package xapi

import "time"

// User is a flattened platform account profile.
type User struct {
	ID          string
	Handle      string
	DisplayName string
	Bio         string
	AvatarURL   string
	Followers   int
	Following   int
	TweetCount  int
	ListedCount int
	CreatedAt   time.Time
	IsVerified  bool
	IsProtected bool
}

// Tweet is a flattened post.
type Tweet struct {
	ID             string
	AuthorID       string
	ConversationID string
	InReplyToID    string
	Text           string
	CreatedAt      time.Time
	Views          int
	Likes          int
	Retweets       int
	Quotes         int
	Replies        int
}

// TweetPage is one page of a cursored tweet listing. Pass NextCursor back
// to the same operation to continue; empty means the listing is exhausted.
type TweetPage struct {
	Tweets     []*Tweet
	NextCursor string
}

// UserPage is one page of a cursored user listing.
type UserPage struct {
	Users      []*User
	NextCursor string
}

// Conversation is a tweet together with its reply thread.
type Conversation struct {
	Tweet      *Tweet
	Replies    []*Tweet
	NextCursor string
}
