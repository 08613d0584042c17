package tools

import (
	"context"
	"fmt"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/costs"
)

type usernameParams struct {
	Username string `json:"username"`
}

type likedTweet struct {
	Liked         bool                   `json:"liked"`
	TweetID       string                 `json:"tweetId"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type unlikedTweet struct {
	Unliked       bool                   `json:"unliked"`
	TweetID       string                 `json:"tweetId"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type userRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type followedUser struct {
	Following     bool                   `json:"following"`
	PendingFollow bool                   `json:"pendingFollow,omitempty"`
	User          userRef                `json:"user"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

func (h *handlers) likeTweet(ctx context.Context, p tweetRefParams) Result {
	id, ok := resolveTweetID(p.TweetID)
	if !ok {
		return Err("Invalid tweet ID or URL")
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}
	userID, err := h.Clients.UserID(ctx)
	if err != nil {
		return failure("like tweet", err)
	}
	resp, err := w.Like(ctx, userID, id)
	if err != nil {
		return failure("like tweet", err)
	}

	h.Costs.Track("like", costs.Like)
	h.Audit.Log("x_like_tweet", fmt.Sprintf("Liked tweet %s", id), map[string]any{"tweetId": id})

	return OK(likedTweet{
		Liked:         resp.Data.Liked,
		TweetID:       id,
		EstimatedCost: estimatedCost(costs.Like),
		RateLimit:     resp.RateLimit,
	})
}

func (h *handlers) unlikeTweet(ctx context.Context, p tweetRefParams) Result {
	id, ok := resolveTweetID(p.TweetID)
	if !ok {
		return Err("Invalid tweet ID or URL")
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}
	userID, err := h.Clients.UserID(ctx)
	if err != nil {
		return failure("unlike tweet", err)
	}
	resp, err := w.Unlike(ctx, userID, id)
	if err != nil {
		return failure("unlike tweet", err)
	}

	h.Costs.Track("unlike", costs.Unlike)
	h.Audit.Log("x_unlike_tweet", fmt.Sprintf("Unliked tweet %s", id), map[string]any{"tweetId": id})

	// The endpoint reports the resulting state: liked=false means the unlike took effect.
	return OK(unlikedTweet{
		Unliked:       !resp.Data.Liked,
		TweetID:       id,
		EstimatedCost: estimatedCost(costs.Unlike),
		RateLimit:     resp.RateLimit,
	})
}

func (h *handlers) followUser(ctx context.Context, p usernameParams) Result {
	username := twitter.NormalizeUsername(p.Username)
	if username == "" {
		return Err("Username cannot be empty")
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}
	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}

	target, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if notFound(err) {
			return Err(fmt.Sprintf("User @%s not found", username))
		}
		return failure("follow user", err)
	}
	sourceID, err := h.Clients.UserID(ctx)
	if err != nil {
		return failure("follow user", err)
	}
	resp, err := w.Follow(ctx, sourceID, target.Data.ID)
	if err != nil {
		return failure("follow user", err)
	}

	h.Costs.Track("follow", costs.Follow)
	h.Audit.Log("x_follow_user", fmt.Sprintf("Followed @%s", username),
		map[string]any{"userId": target.Data.ID, "username": username, "pendingFollow": resp.Data.PendingFollow})

	return OK(followedUser{
		Following:     resp.Data.Following,
		PendingFollow: resp.Data.PendingFollow,
		User:          userRef{ID: target.Data.ID, Username: username},
		EstimatedCost: estimatedCost(costs.Follow),
		RateLimit:     resp.RateLimit,
	})
}
