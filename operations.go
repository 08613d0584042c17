package twitter

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Result-count bounds accepted by the v2 endpoints.
const (
	minSearchResults   = 10
	maxSearchResults   = 100
	minMentionResults  = 5
	maxMentionResults  = 100
	minDMEventResults  = 1
	maxDMEventResults  = 100
	mediaCategoryImage = "tweet_image"
	dmMessageCreate    = "MessageCreate"
)

// clampResults keeps n inside the range an endpoint accepts.
func clampResults(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

// CreatePost publishes a tweet. When req.InReplyToTweetID is set the tweet is a reply.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (*Response[*Post], error) {
	body := map[string]any{"text": req.Text}
	if req.InReplyToTweetID != "" {
		body["reply"] = map[string]string{"in_reply_to_tweet_id": req.InReplyToTweetID}
	}
	if len(req.MediaIDs) > 0 {
		body["media"] = map[string][]string{"media_ids": req.MediaIDs}
	}
	return call(ctx, c, request{
		endpoint: epCreatePost,
		method:   http.MethodPost,
		url:      endpointURL(c.cfg.BaseURL, "tweets"),
		body:     body,
	}, parseCreatedPost)
}

// DeletePost deletes a tweet owned by the authenticated account.
func (c *Client) DeletePost(ctx context.Context, tweetID string) (*Response[DeleteResult], error) {
	return call(ctx, c, request{
		endpoint: epDeletePost,
		method:   http.MethodDelete,
		url:      endpointURL(c.cfg.BaseURL, "tweets", tweetID),
	}, parseDeleted)
}

// SearchRecent searches tweets from the last seven days.
func (c *Client) SearchRecent(ctx context.Context, query string, maxResults int) (*Response[[]*Post], error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(clampResults(maxResults, minSearchResults, maxSearchResults)))
	q.Set("tweet.fields", fieldList(timelineTweetFields))
	return getJSON(ctx, c, epSearchRecent, endpointURL(c.cfg.BaseURL, "tweets", "search", "recent"), q, parsePostList)
}

// GetPost fetches a single tweet with its author expanded.
func (c *Client) GetPost(ctx context.Context, tweetID string) (*Response[*Post], error) {
	q := url.Values{}
	q.Set("tweet.fields", fieldList(detailTweetFields))
	q.Set("expansions", "author_id")
	q.Set("user.fields", fieldList(authorUserFields))
	return getJSON(ctx, c, epGetPost, endpointURL(c.cfg.BaseURL, "tweets", tweetID), q, parsePost)
}

// GetUserByUsername looks up a profile by handle (without the @).
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*Response[*User], error) {
	q := url.Values{}
	q.Set("user.fields", fieldList(profileUserFields))
	return getJSON(ctx, c, epUserByUsername, endpointURL(c.cfg.BaseURL, "users", "by", "username", username), q, parseUser)
}

// GetMe returns the account the client is authenticated as.
func (c *Client) GetMe(ctx context.Context) (*Response[*User], error) {
	return getJSON(ctx, c, epMe, endpointURL(c.cfg.BaseURL, "users", "me"), nil, parseUser)
}

// GetMentions lists recent tweets mentioning userID.
func (c *Client) GetMentions(ctx context.Context, userID string, maxResults int) (*Response[[]*Post], error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clampResults(maxResults, minMentionResults, maxMentionResults)))
	q.Set("tweet.fields", fieldList(timelineTweetFields))
	return getJSON(ctx, c, epMentions, endpointURL(c.cfg.BaseURL, "users", userID, "mentions"), q, parsePostList)
}

// Like likes tweetID on behalf of userID.
func (c *Client) Like(ctx context.Context, userID, tweetID string) (*Response[LikeResult], error) {
	return call(ctx, c, request{
		endpoint: epLike,
		method:   http.MethodPost,
		url:      endpointURL(c.cfg.BaseURL, "users", userID, "likes"),
		body:     map[string]string{"tweet_id": tweetID},
	}, parseLiked)
}

// Unlike removes a like. The returned LikeResult.Liked is false on success.
func (c *Client) Unlike(ctx context.Context, userID, tweetID string) (*Response[LikeResult], error) {
	return call(ctx, c, request{
		endpoint: epUnlike,
		method:   http.MethodDelete,
		url:      endpointURL(c.cfg.BaseURL, "users", userID, "likes", tweetID),
	}, parseLiked)
}

// Follow follows targetUserID from sourceUserID.
func (c *Client) Follow(ctx context.Context, sourceUserID, targetUserID string) (*Response[FollowResult], error) {
	return call(ctx, c, request{
		endpoint: epFollow,
		method:   http.MethodPost,
		url:      endpointURL(c.cfg.BaseURL, "users", sourceUserID, "following"),
		body:     map[string]string{"target_user_id": targetUserID},
	}, parseFollowing)
}

// SendDM sends a one-to-one direct message to participantID.
func (c *Client) SendDM(ctx context.Context, participantID, text string) (*Response[DMResult], error) {
	return call(ctx, c, request{
		endpoint: epSendDM,
		method:   http.MethodPost,
		url:      endpointURL(c.cfg.BaseURL, "dm_conversations", "with", participantID, "messages"),
		body:     map[string]string{"text": text},
	}, parseDMResult)
}

// ListDMEvents lists recent DM events. An empty participantID lists across all conversations.
func (c *Client) ListDMEvents(ctx context.Context, participantID string, maxResults int) (*Response[[]*DMEvent], error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clampResults(maxResults, minDMEventResults, maxDMEventResults)))
	q.Set("dm_event.fields", fieldList(dmEventFields))
	q.Set("event_types", dmMessageCreate)

	u := endpointURL(c.cfg.BaseURL, "dm_events")
	if participantID != "" {
		u = endpointURL(c.cfg.BaseURL, "dm_conversations", "with", participantID, "dm_events")
	}
	return getJSON(ctx, c, epDMEvents, u, q, parseDMEvents)
}

// UploadMedia uploads an image in a single request and returns its media id.
func (c *Client) UploadMedia(ctx context.Context, data []byte, mimeType string) (*Response[Media], error) {
	return call(ctx, c, request{
		endpoint: epMediaUpload,
		method:   http.MethodPost,
		url:      strings.TrimRight(c.cfg.UploadURL, "/"),
		body: map[string]string{
			"media":          base64.StdEncoding.EncodeToString(data),
			"media_category": mediaCategoryImage,
			"media_type":     mimeType,
		},
	}, parseMedia)
}
