package tools

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	twitter "github.com/anatolykoptev/go-xtools"
)

func rateLimited(resetIn time.Duration) error {
	return &twitter.APIError{
		Endpoint: "create_post",
		Status:   429,
		Headers:  map[string]string{"x-rate-limit-reset": strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10)},
		Body:     []byte(`{"title":"Too Many Requests","status":429}`),
	}
}

func TestPostThread_RepliesToPreviousTweet(t *testing.T) {
	var reqs []twitter.CreatePostRequest
	next := 100
	api := &fakeAPI{createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		reqs = append(reqs, req)
		id := strconv.Itoa(next)
		next++
		return postOK(id, req.Text)
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_thread", map[string]any{"tweets": []string{"a", "b", "c"}})
	require.False(t, res.IsError, res.Text())

	assert.Equal(t, "100", out["threadId"])
	assert.Equal(t, float64(3), out["tweetCount"])
	assert.Equal(t, "$0.0300", out["estimatedCost"])

	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].InReplyToTweetID)
	assert.Equal(t, "100", reqs[1].InReplyToTweetID)
	assert.Equal(t, "101", reqs[2].InReplyToTweetID)

	assert.Equal(t, 0.03, h.ledger.Total())

	tweets := out["tweets"].([]any)
	require.Len(t, tweets, 3)
	assert.Equal(t, "https://x.com/i/status/102", tweets[2].(map[string]any)["url"])

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x_post_thread", entries[0].Action)
}

func TestPostThread_StopsAtMissingID(t *testing.T) {
	next := 100
	api := &fakeAPI{createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		if next == 102 {
			return nil, &twitter.MissingIDError{Body: []byte(`{"data":{}}`)}
		}
		id := strconv.Itoa(next)
		next++
		return postOK(id, req.Text)
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_thread", map[string]any{"tweets": []string{"a", "b", "c", "d"}})
	require.True(t, res.IsError)
	assert.Equal(t, "Failed to create tweet in thread: no ID returned after 2 tweets", out["error"])

	details := out["details"].(map[string]any)
	assert.Len(t, details["postedSoFar"], 2)
	assert.Equal(t, map[string]any{"data": map[string]any{}}, details["response"])

	assert.Equal(t, 0.0, h.ledger.Total())
	assert.Len(t, api.Calls(), 3)

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].Details["partial"])
}

func TestPostThread_RateLimitedMidway(t *testing.T) {
	calls := 0
	api := &fakeAPI{createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		calls++
		if calls == 2 {
			return nil, rateLimited(time.Minute)
		}
		return postOK("100", req.Text)
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_thread", map[string]any{"tweets": []string{"a", "b", "c"}})
	require.False(t, res.IsError)
	assert.Equal(t, true, out["rateLimited"])
	assert.Len(t, out["postedSoFar"], 1)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0.0, h.ledger.Total())

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x_post_thread", entries[0].Action)
	assert.Equal(t, true, entries[0].Details["partial"])
	assert.Equal(t, []any{"100"}, entries[0].Details["tweetIds"])
}

func TestPostThread_Validation(t *testing.T) {
	h := newHarness(t, &fakeAPI{})

	res := h.reg.Execute(t.Context(), "x_post_thread", "", []byte(`{"tweets":[]}`))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Invalid parameters")

	th := &handlers{Deps: Deps{Clients: &fakeClients{api: h.api}}}
	assert.Contains(t, th.postThread(t.Context(), postThreadParams{}).Text(), "Thread must contain at least one tweet")

	res, out := h.call(t, "x_post_thread", map[string]any{"tweets": []string{"ok", "  "}})
	assert.True(t, res.IsError)
	assert.Equal(t, "Tweet at index 1 is empty", out["error"])
	assert.Empty(t, h.api.Calls())
}

func TestPostTweet_RateLimitedIsSuccessShaped(t *testing.T) {
	api := &fakeAPI{createPost: func(twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		return nil, rateLimited(300 * time.Second)
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_tweet", map[string]any{"text": "hello"})
	require.False(t, res.IsError)
	assert.Equal(t, true, out["rateLimited"])
	retry := out["retryAfterSeconds"].(float64)
	assert.Greater(t, retry, 0.0)
	assert.LessOrEqual(t, retry, 300.0)
	assert.NotEmpty(t, out["resetsAt"])

	assert.Equal(t, 0.0, h.ledger.Total())
	assert.Empty(t, h.ledger.Summary().Breakdown)
	assert.Empty(t, h.audit.Entries())
}

func TestPostTweet_Success(t *testing.T) {
	api := &fakeAPI{createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		return &twitter.Response[*twitter.Post]{
			Data:      &twitter.Post{ID: "555"},
			RateLimit: &twitter.RateLimitInfo{Remaining: 9, Limit: 10, ResetsAt: "2026-01-01T00:00:00.000Z"},
		}, nil
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_tweet", map[string]any{"text": "hello world"})
	require.False(t, res.IsError, res.Text())
	assert.Equal(t, "555", out["id"])
	assert.Equal(t, "hello world", out["text"])
	assert.Equal(t, "https://x.com/i/status/555", out["url"])
	assert.Equal(t, "$0.0100", out["estimatedCost"])
	assert.Equal(t, map[string]any{"remaining": 9.0, "limit": 10.0, "resetsAt": "2026-01-01T00:00:00.000Z"}, out["rateLimit"])

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x_post_tweet", entries[0].Action)
	assert.Equal(t, `Posted tweet: "hello world"`, entries[0].Summary)
	assert.Equal(t, 0.01, h.ledger.Total())
}

func TestPostTweet_WithImage(t *testing.T) {
	var got twitter.CreatePostRequest
	api := &fakeAPI{
		uploadMedia: func(data []byte, mime string) (*twitter.Response[twitter.Media], error) {
			assert.Equal(t, []byte("img"), data)
			assert.Equal(t, "image/png", mime)
			return &twitter.Response[twitter.Media]{Data: twitter.Media{ID: "m1"}}, nil
		},
		createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
			got = req
			return postOK("1", req.Text)
		},
	}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_tweet", map[string]any{"text": "pic", "image": "https://cdn.test/a.png"})
	require.False(t, res.IsError, res.Text())
	assert.Equal(t, []string{"m1"}, got.MediaIDs)
	assert.Equal(t, "m1", out["mediaId"])
	assert.Equal(t, []string{"UploadMedia", "CreatePost"}, api.Calls())
}

func TestPostTweet_EmptyText(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	for _, text := range []string{"", "   ", "\n\t"} {
		res, out := h.call(t, "x_post_tweet", map[string]any{"text": text})
		assert.True(t, res.IsError)
		assert.Equal(t, "Tweet text cannot be empty", out["error"])
	}
	assert.Empty(t, h.api.Calls())
}

func TestPostTweet_UpstreamError(t *testing.T) {
	api := &fakeAPI{createPost: func(twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		return nil, &twitter.APIError{Endpoint: "create_post", Status: 403, Body: []byte(`{"detail":"duplicate content"}`)}
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_post_tweet", map[string]any{"text": "again"})
	assert.True(t, res.IsError)
	assert.Contains(t, out["error"], "Failed to post tweet: ")
	assert.Contains(t, out["error"], "duplicate content")
}

func TestReplyTweet_AcceptsStatusURL(t *testing.T) {
	var got twitter.CreatePostRequest
	api := &fakeAPI{createPost: func(req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
		got = req
		return postOK("9", req.Text)
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_reply_tweet", map[string]any{
		"tweetId": "https://x.com/alice/status/1234567890?s=20#top",
		"text":    "nice",
	})
	require.False(t, res.IsError, res.Text())
	assert.Equal(t, "1234567890", got.InReplyToTweetID)
	assert.Equal(t, "1234567890", out["inReplyTo"])

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x_reply_tweet", entries[0].Action)
}

func TestReplyTweet_Validation(t *testing.T) {
	h := newHarness(t, &fakeAPI{})

	_, out := h.call(t, "x_reply_tweet", map[string]any{"tweetId": "1", "text": " "})
	assert.Equal(t, "Reply text cannot be empty", out["error"])

	_, out = h.call(t, "x_reply_tweet", map[string]any{"tweetId": "not-an-id", "text": "hi"})
	assert.Equal(t, "Invalid tweet ID or URL", out["error"])

	assert.Empty(t, h.api.Calls())
}

func TestDeleteTweet(t *testing.T) {
	api := &fakeAPI{deletePost: func(id string) (*twitter.Response[twitter.DeleteResult], error) {
		assert.Equal(t, "77", id)
		return &twitter.Response[twitter.DeleteResult]{Data: twitter.DeleteResult{Deleted: true}}, nil
	}}
	h := newHarness(t, api)

	res, out := h.call(t, "x_delete_tweet", map[string]any{"tweetId": " 77 "})
	require.False(t, res.IsError, res.Text())
	assert.Equal(t, true, out["deleted"])
	assert.Equal(t, "77", out["tweetId"])

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Deleted tweet 77", entries[0].Summary)
	assert.Equal(t, 0.01, h.ledger.Summary().Breakdown["delete"].TotalCost)
}
