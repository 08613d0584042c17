package tools

import (
	"context"
	"fmt"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/costs"
)

const defaultMaxResults = 10

type searchParams struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"maxResults,omitempty"`
}

type mentionsParams struct {
	MaxResults *int `json:"maxResults,omitempty"`
}

// tweetMetrics renders the public counters of a tweet.
type tweetMetrics struct {
	RetweetCount    int `json:"retweetCount"`
	ReplyCount      int `json:"replyCount"`
	LikeCount       int `json:"likeCount"`
	QuoteCount      int `json:"quoteCount"`
	BookmarkCount   int `json:"bookmarkCount"`
	ImpressionCount int `json:"impressionCount"`
}

func metricsOf(m *twitter.PostMetrics) *tweetMetrics {
	if m == nil {
		return nil
	}
	return &tweetMetrics{
		RetweetCount:    m.RetweetCount,
		ReplyCount:      m.ReplyCount,
		LikeCount:       m.LikeCount,
		QuoteCount:      m.QuoteCount,
		BookmarkCount:   m.BookmarkCount,
		ImpressionCount: m.ImpressionCount,
	}
}

// tweetSummary is the list rendering of a tweet.
type tweetSummary struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	AuthorID  string        `json:"authorId,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
	Metrics   *tweetMetrics `json:"metrics,omitempty"`
	URL       string        `json:"url"`
}

type searchResult struct {
	Query         string                 `json:"query"`
	ResultCount   int                    `json:"resultCount"`
	Tweets        []tweetSummary         `json:"tweets"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type mentionsResult struct {
	ResultCount   int                    `json:"resultCount"`
	Mentions      []tweetSummary         `json:"mentions"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type profileResult struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Username        string                 `json:"username"`
	Description     *string                `json:"description"`
	FollowersCount  *int                   `json:"followersCount"`
	FollowingCount  *int                   `json:"followingCount"`
	TweetCount      *int                   `json:"tweetCount"`
	Verified        bool                   `json:"verified"`
	ProfileImageURL *string                `json:"profileImageUrl"`
	URL             *string                `json:"url"`
	CreatedAt       *string                `json:"createdAt"`
	Location        *string                `json:"location"`
	ProfileURL      string                 `json:"profileUrl"`
	EstimatedCost   string                 `json:"estimatedCost"`
	RateLimit       *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type tweetAuthor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	Verified        bool   `json:"verified"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

type tweetResult struct {
	ID              string                 `json:"id"`
	Text            string                 `json:"text"`
	AuthorID        string                 `json:"authorId,omitempty"`
	CreatedAt       string                 `json:"createdAt,omitempty"`
	Metrics         *tweetMetrics          `json:"metrics,omitempty"`
	ConversationID  string                 `json:"conversationId,omitempty"`
	InReplyToUserID string                 `json:"inReplyToUserId,omitempty"`
	Lang            string                 `json:"lang,omitempty"`
	URL             string                 `json:"url"`
	Author          *tweetAuthor           `json:"author"`
	EstimatedCost   string                 `json:"estimatedCost"`
	RateLimit       *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

func maxResultsOr(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}

func summarize(posts []*twitter.Post) []tweetSummary {
	out := make([]tweetSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, tweetSummary{
			ID:        p.ID,
			Text:      p.Text,
			AuthorID:  p.AuthorID,
			CreatedAt: p.CreatedAt,
			Metrics:   metricsOf(p.Metrics),
			URL:       twitter.TweetURL("", p.ID),
		})
	}
	return out
}

// nullable renders "" as JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *handlers) searchTweets(ctx context.Context, p searchParams) Result {
	if blank(p.Query) {
		return Err("Search query cannot be empty")
	}

	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}
	resp, err := r.SearchRecent(ctx, p.Query, maxResultsOr(p.MaxResults, defaultMaxResults))
	if err != nil {
		return failure("search tweets", err)
	}

	tweets := summarize(resp.Data)
	cost := costs.SearchPerResult * float64(len(tweets))
	h.Costs.Track("search", cost)

	return OK(searchResult{
		Query:         p.Query,
		ResultCount:   len(tweets),
		Tweets:        tweets,
		EstimatedCost: estimatedCost(cost),
		RateLimit:     resp.RateLimit,
	})
}

func (h *handlers) getUserProfile(ctx context.Context, p usernameParams) Result {
	username := twitter.NormalizeUsername(p.Username)
	if username == "" {
		return Err("Username cannot be empty")
	}

	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}
	resp, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if notFound(err) {
			return Err(fmt.Sprintf("User @%s not found", username))
		}
		return failure("get user profile", err)
	}

	h.Costs.Track("user_lookup", costs.UserLookup)

	u := resp.Data
	out := profileResult{
		ID:              u.ID,
		Name:            u.Name,
		Username:        u.Username,
		Description:     nullable(u.Description),
		Verified:        u.Verified,
		ProfileImageURL: nullable(u.ProfileImageURL),
		URL:             nullable(u.URL),
		CreatedAt:       nullable(u.CreatedAt),
		Location:        nullable(u.Location),
		ProfileURL:      twitter.ProfileURL(u.Username),
		EstimatedCost:   estimatedCost(costs.UserLookup),
		RateLimit:       resp.RateLimit,
	}
	if m := u.Metrics; m != nil {
		out.FollowersCount = &m.FollowersCount
		out.FollowingCount = &m.FollowingCount
		out.TweetCount = &m.TweetCount
	}
	return OK(out)
}

func (h *handlers) getMentions(ctx context.Context, p mentionsParams) Result {
	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}
	userID, err := h.Clients.UserID(ctx)
	if err != nil {
		return failure("get mentions", err)
	}
	resp, err := r.GetMentions(ctx, userID, maxResultsOr(p.MaxResults, defaultMaxResults))
	if err != nil {
		return failure("get mentions", err)
	}

	mentions := summarize(resp.Data)
	cost := costs.MentionPerResult * float64(len(mentions))
	h.Costs.Track("mentions", cost)

	return OK(mentionsResult{
		ResultCount:   len(mentions),
		Mentions:      mentions,
		EstimatedCost: estimatedCost(cost),
		RateLimit:     resp.RateLimit,
	})
}

func (h *handlers) getTweet(ctx context.Context, p tweetRefParams) Result {
	id, ok := resolveTweetID(p.TweetID)
	if !ok {
		return Err("Invalid tweet ID or URL")
	}

	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}
	resp, err := r.GetPost(ctx, id)
	if err != nil {
		if notFound(err) {
			return Err(fmt.Sprintf("Tweet %s not found", id))
		}
		return failure("get tweet", err)
	}

	h.Costs.Track("get_tweet", costs.GetTweet)

	t := resp.Data
	out := tweetResult{
		ID:              t.ID,
		Text:            t.Text,
		AuthorID:        t.AuthorID,
		CreatedAt:       t.CreatedAt,
		Metrics:         metricsOf(t.Metrics),
		ConversationID:  t.ConversationID,
		InReplyToUserID: t.InReplyToUserID,
		Lang:            t.Lang,
		URL:             twitter.TweetURL("", t.ID),
		EstimatedCost:   estimatedCost(costs.GetTweet),
		RateLimit:       resp.RateLimit,
	}
	if a := t.Author; a != nil {
		out.URL = twitter.TweetURL(a.Username, t.ID)
		out.Author = &tweetAuthor{
			ID:              a.ID,
			Name:            a.Name,
			Username:        a.Username,
			Verified:        a.Verified,
			ProfileImageURL: a.ProfileImageURL,
		}
	}
	return OK(out)
}
