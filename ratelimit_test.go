package twitter

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    *RateLimitInfo
	}{
		{
			name:    "no headers",
			headers: map[string]string{"content-type": "application/json"},
			want:    nil,
		},
		{
			name:    "nil map",
			headers: nil,
			want:    nil,
		},
		{
			name: "all present",
			headers: map[string]string{
				"x-rate-limit-remaining": "42",
				"x-rate-limit-limit":     "50",
				"x-rate-limit-reset":     "1700000000",
			},
			want: &RateLimitInfo{Remaining: 42, Limit: 50, ResetsAt: "2023-11-14T22:13:20.000Z"},
		},
		{
			name:    "only remaining",
			headers: map[string]string{"x-rate-limit-remaining": "3"},
			want:    &RateLimitInfo{Remaining: 3, Limit: -1, ResetsAt: ""},
		},
		{
			name:    "mixed case keys",
			headers: map[string]string{"X-Rate-Limit-Limit": "900"},
			want:    &RateLimitInfo{Remaining: -1, Limit: 900, ResetsAt: ""},
		},
		{
			name:    "garbage values",
			headers: map[string]string{"x-rate-limit-remaining": "many", "x-rate-limit-reset": "soon"},
			want:    &RateLimitInfo{Remaining: -1, Limit: -1, ResetsAt: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRateLimit(tt.headers))
		})
	}
}

func TestParseRateLimitError_NotRateLimited(t *testing.T) {
	cases := []error{
		nil,
		errors.New("plain failure"),
		&APIError{Endpoint: epCreatePost, Status: 403},
		&APIError{Endpoint: epCreatePost, Status: 500},
		fmt.Errorf("wrapped: %w", &APIError{Status: 401}),
	}
	for _, err := range cases {
		assert.Nil(t, ParseRateLimitError(err), "err=%v", err)
	}
}

func TestParseRateLimitError_WithReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 500_000_000)
	reset := now.Unix() + 300
	err := fmt.Errorf("post: %w", &APIError{
		Endpoint: epCreatePost,
		Status:   429,
		Headers:  map[string]string{"x-rate-limit-reset": strconv.FormatInt(reset, 10)},
	})

	rl := parseRateLimitErrorAt(err, now)
	require.NotNil(t, rl)
	assert.True(t, rl.RateLimited)
	assert.Equal(t, 300, rl.RetryAfterSeconds)
	assert.Equal(t, isoTime(time.Unix(reset, 0)), rl.ResetsAt)
	assert.Contains(t, rl.Error, "Retry after 300s")
	assert.Contains(t, rl.Error, rl.ResetsAt)
}

func TestParseRateLimitError_WithinWindow(t *testing.T) {
	for _, n := range []int64{5, 30, 300, 900} {
		reset := time.Now().Unix() + n
		rl := ParseRateLimitError(&APIError{
			Status:  429,
			Headers: map[string]string{"x-rate-limit-reset": strconv.FormatInt(reset, 10)},
		})
		require.NotNil(t, rl)
		assert.Greater(t, rl.RetryAfterSeconds, 0, "n=%d", n)
		assert.LessOrEqual(t, rl.RetryAfterSeconds, int(n), "n=%d", n)
	}
}

func TestParseRateLimitError_PastResetFloorsAtZero(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := parseRateLimitErrorAt(&APIError{
		Status:  429,
		Headers: map[string]string{"x-rate-limit-reset": strconv.FormatInt(now.Unix()-120, 10)},
	}, now)
	require.NotNil(t, rl)
	assert.Equal(t, 0, rl.RetryAfterSeconds)
}

func TestParseRateLimitError_DefaultRetry(t *testing.T) {
	rl := ParseRateLimitError(&APIError{Status: 429})
	require.NotNil(t, rl)
	assert.Equal(t, 60, rl.RetryAfterSeconds)
	assert.Equal(t, "", rl.ResetsAt)
	assert.Equal(t, "Rate limit exceeded. Retry after 60s (resets at unknown).", rl.Error)
}
