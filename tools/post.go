package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/costs"
)

type postTweetParams struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

type postThreadParams struct {
	Tweets []string `json:"tweets"`
}

type replyTweetParams struct {
	TweetID string `json:"tweetId"`
	Text    string `json:"text"`
	Image   string `json:"image,omitempty"`
}

type tweetRefParams struct {
	TweetID string `json:"tweetId"`
}

type postedTweet struct {
	ID            string                 `json:"id"`
	Text          string                 `json:"text"`
	URL           string                 `json:"url"`
	InReplyTo     string                 `json:"inReplyTo,omitempty"`
	MediaID       string                 `json:"mediaId,omitempty"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type threadTweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

type postedThread struct {
	ThreadID      string                 `json:"threadId"`
	TweetCount    int                    `json:"tweetCount"`
	Tweets        []threadTweet          `json:"tweets"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

// threadRateLimited is the quota envelope for a thread that stopped partway.
type threadRateLimited struct {
	*twitter.RateLimitError
	PostedSoFar []threadTweet `json:"postedSoFar"`
}

type threadFailure struct {
	Response    json.RawMessage `json:"response,omitempty"`
	PostedSoFar []threadTweet   `json:"postedSoFar"`
}

type deletedTweet struct {
	Deleted       bool                   `json:"deleted"`
	TweetID       string                 `json:"tweetId"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

// resolveTweetID accepts a numeric id or a status URL.
func resolveTweetID(input string) (string, bool) {
	id := twitter.ParseTweetID(input)
	return id, twitter.IsNumericID(id)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func missingID(err error) (*twitter.MissingIDError, bool) {
	var m *twitter.MissingIDError
	ok := errors.As(err, &m)
	return m, ok
}

// rawBody keeps a response body as JSON in an error envelope when it parses as such.
func rawBody(b []byte) json.RawMessage {
	if !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}

// uploadImage loads src and uploads it, returning the media id to attach.
func (h *handlers) uploadImage(ctx context.Context, w twitter.API, src string) (string, error) {
	img, err := h.Images.Load(ctx, src)
	if err != nil {
		return "", err
	}
	resp, err := w.UploadMedia(ctx, img.Data, img.MimeType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if resp.Data.ID == "" {
		return "", errors.New("upload image: no media ID returned")
	}
	return resp.Data.ID, nil
}

func (h *handlers) postTweet(ctx context.Context, p postTweetParams) Result {
	if blank(p.Text) {
		return Err("Tweet text cannot be empty")
	}
	return h.createTweet(ctx, "x_post_tweet", "post tweet", p.Text, "", p.Image)
}

func (h *handlers) replyTweet(ctx context.Context, p replyTweetParams) Result {
	if blank(p.Text) {
		return Err("Reply text cannot be empty")
	}
	id, ok := resolveTweetID(p.TweetID)
	if !ok {
		return Err("Invalid tweet ID or URL")
	}
	return h.createTweet(ctx, "x_reply_tweet", "reply to tweet", p.Text, id, p.Image)
}

// createTweet is shared by post and reply; replyTo is empty for a top-level tweet.
func (h *handlers) createTweet(ctx context.Context, tool, action, text, replyTo, image string) Result {
	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}

	req := twitter.CreatePostRequest{Text: text, InReplyToTweetID: replyTo}
	var mediaID string
	if strings.TrimSpace(image) != "" {
		mediaID, err = h.uploadImage(ctx, w, image)
		if err != nil {
			return failure(action, err)
		}
		req.MediaIDs = []string{mediaID}
	}

	resp, err := w.CreatePost(ctx, req)
	if err != nil {
		if m, ok := missingID(err); ok {
			msg := fmt.Sprintf("Failed to %s: no ID returned", action)
			if body := rawBody(m.Body); body != nil {
				return Err(msg, body)
			}
			return Err(msg)
		}
		return failure(action, err)
	}

	post := resp.Data
	if post.Text == "" {
		post.Text = text
	}
	out := postedTweet{
		ID:            post.ID,
		Text:          post.Text,
		URL:           twitter.TweetURL("", post.ID),
		InReplyTo:     replyTo,
		MediaID:       mediaID,
		EstimatedCost: estimatedCost(costs.Post),
		RateLimit:     resp.RateLimit,
	}
	h.Costs.Track("post", costs.Post)

	details := map[string]any{"id": out.ID, "text": out.Text, "url": out.URL}
	summary := fmt.Sprintf("Posted tweet: %q", summaryText(out.Text))
	if replyTo != "" {
		details["inReplyTo"] = replyTo
		summary = fmt.Sprintf("Replied to tweet %s: %q", replyTo, summaryText(out.Text))
	}
	if mediaID != "" {
		details["mediaId"] = mediaID
	}
	h.Audit.Log(tool, summary, details)

	return OK(out)
}

func (h *handlers) postThread(ctx context.Context, p postThreadParams) Result {
	if len(p.Tweets) == 0 {
		return Err("Thread must contain at least one tweet")
	}
	for i, t := range p.Tweets {
		if blank(t) {
			return Err(fmt.Sprintf("Tweet at index %d is empty", i))
		}
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}

	posted := make([]threadTweet, 0, len(p.Tweets))
	var (
		previous string
		last     *twitter.RateLimitInfo
	)
	for _, text := range p.Tweets {
		resp, err := w.CreatePost(ctx, twitter.CreatePostRequest{Text: text, InReplyToTweetID: previous})
		if err != nil {
			h.logPartialThread(posted, len(p.Tweets))
			if m, ok := missingID(err); ok {
				return Err(
					fmt.Sprintf("Failed to create tweet in thread: no ID returned after %d tweets", len(posted)),
					threadFailure{Response: rawBody(m.Body), PostedSoFar: posted},
				)
			}
			if rl := twitter.ParseRateLimitError(err); rl != nil {
				return OK(threadRateLimited{RateLimitError: rl, PostedSoFar: posted})
			}
			return Err(fmt.Sprintf("Failed to post thread: %s", err.Error()), threadFailure{PostedSoFar: posted})
		}

		t := threadTweet{ID: resp.Data.ID, Text: resp.Data.Text, URL: twitter.TweetURL("", resp.Data.ID)}
		if t.Text == "" {
			t.Text = text
		}
		posted = append(posted, t)
		previous = t.ID
		last = resp.RateLimit
	}

	cost := costs.Post * float64(len(posted))
	h.Costs.Track("post", cost)

	ids := make([]string, len(posted))
	for i, t := range posted {
		ids[i] = t.ID
	}
	h.Audit.Log("x_post_thread",
		fmt.Sprintf("Posted thread of %d tweets: %q", len(posted), summaryText(posted[0].Text)),
		map[string]any{"threadId": posted[0].ID, "tweetIds": ids, "url": posted[0].URL})

	return OK(postedThread{
		ThreadID:      posted[0].ID,
		TweetCount:    len(posted),
		Tweets:        posted,
		EstimatedCost: estimatedCost(cost),
		RateLimit:     last,
	})
}

// logPartialThread records tweets that went out before a thread failed; they exist on the account.
func (h *handlers) logPartialThread(posted []threadTweet, total int) {
	if len(posted) == 0 {
		return
	}
	ids := make([]string, len(posted))
	for i, t := range posted {
		ids[i] = t.ID
	}
	h.Audit.Log("x_post_thread",
		fmt.Sprintf("Posted partial thread (%d of %d tweets): %q", len(posted), total, summaryText(posted[0].Text)),
		map[string]any{"threadId": posted[0].ID, "tweetIds": ids, "partial": true})
}

func (h *handlers) deleteTweet(ctx context.Context, p tweetRefParams) Result {
	id, ok := resolveTweetID(p.TweetID)
	if !ok {
		return Err("Invalid tweet ID or URL")
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}
	resp, err := w.DeletePost(ctx, id)
	if err != nil {
		return failure("delete tweet", err)
	}

	h.Costs.Track("delete", costs.Delete)
	h.Audit.Log("x_delete_tweet", fmt.Sprintf("Deleted tweet %s", id), map[string]any{"tweetId": id})

	return OK(deletedTweet{
		Deleted:       resp.Data.Deleted,
		TweetID:       id,
		EstimatedCost: estimatedCost(costs.Delete),
		RateLimit:     resp.RateLimit,
	})
}
