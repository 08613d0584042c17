package twitter

// Post represents a single tweet as returned by the v2 API.
type Post struct {
	ID              string       `json:"id"`
	Text            string       `json:"text"`
	AuthorID        string       `json:"author_id,omitempty"`
	CreatedAt       string       `json:"created_at,omitempty"`
	ConversationID  string       `json:"conversation_id,omitempty"`
	InReplyToUserID string       `json:"in_reply_to_user_id,omitempty"`
	Lang            string       `json:"lang,omitempty"`
	Source          string       `json:"source,omitempty"`
	Metrics         *PostMetrics `json:"public_metrics,omitempty"`
	Author          *User        `json:"-"`
}

// PostMetrics are the public engagement counters of a tweet.
type PostMetrics struct {
	RetweetCount    int `json:"retweet_count"`
	ReplyCount      int `json:"reply_count"`
	LikeCount       int `json:"like_count"`
	QuoteCount      int `json:"quote_count"`
	BookmarkCount   int `json:"bookmark_count"`
	ImpressionCount int `json:"impression_count"`
}

// User represents an X account profile.
type User struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Username        string       `json:"username"`
	Description     string       `json:"description,omitempty"`
	Verified        bool         `json:"verified,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	URL             string       `json:"url,omitempty"`
	CreatedAt       string       `json:"created_at,omitempty"`
	Location        string       `json:"location,omitempty"`
	PinnedTweetID   string       `json:"pinned_tweet_id,omitempty"`
	Metrics         *UserMetrics `json:"public_metrics,omitempty"`
}

// UserMetrics are the public counters of an account.
type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// DMEvent is a direct message event.
type DMEvent struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SenderID       string `json:"sender_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	ConversationID string `json:"dm_conversation_id,omitempty"`
	EventType      string `json:"event_type,omitempty"`
}

// CreatePostRequest describes a new tweet. InReplyToTweetID turns it into a reply.
type CreatePostRequest struct {
	Text             string
	InReplyToTweetID string
	MediaIDs         []string
}

// DeleteResult is the outcome of deleting a tweet.
type DeleteResult struct {
	Deleted bool
}

// LikeResult is the outcome of liking or unliking a tweet.
type LikeResult struct {
	Liked bool
}

// FollowResult is the outcome of a follow request.
type FollowResult struct {
	Following     bool
	PendingFollow bool
}

// DMResult identifies a sent direct message.
type DMResult struct {
	EventID        string
	ConversationID string
}

// Media identifies an uploaded media object.
type Media struct {
	ID       string
	MediaKey string
}
