package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTweetID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567890", "1234567890"},
		{"  1234567890  ", "1234567890"},
		{"https://x.com/alice/status/1234567890", "1234567890"},
		{"https://twitter.com/alice/status/1234567890?s=20&t=abc", "1234567890"},
		{"https://x.com/alice/status/1234567890#reply", "1234567890"},
		{"https://x.com/i/web/status/987", "987"},
		{"not-a-tweet", "not-a-tweet"},
		{"  hello world ", "hello world"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTweetID(tt.in), "input %q", tt.in)
	}
}

func TestIsNumericID(t *testing.T) {
	assert.True(t, IsNumericID("123"))
	assert.False(t, IsNumericID(""))
	assert.False(t, IsNumericID("12a"))
	assert.False(t, IsNumericID("-1"))
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@alice", "alice"},
		{" bob ", "bob"},
		{" @carol ", "carol"},
		{"@@dave", "@dave"},
		{"erin", "erin"},
		{"@", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUsername(tt.in), "input %q", tt.in)
	}
}

func TestTweetURL(t *testing.T) {
	assert.Equal(t, "https://x.com/alice/status/42", TweetURL("alice", "42"))
	assert.Equal(t, "https://x.com/i/status/42", TweetURL("", "42"))
	assert.Equal(t, "https://x.com/alice", ProfileURL("alice"))
}
