package twitter

import (
	"regexp"
	"strings"
)

var statusIDRe = regexp.MustCompile(`status/(\d+)`)

// ParseTweetID extracts the numeric id from a status URL.
// Anything that is not a status URL is returned trimmed and otherwise unchanged.
func ParseTweetID(input string) string {
	if m := statusIDRe.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return strings.TrimSpace(input)
}

// IsNumericID reports whether s is a non-empty run of digits.
func IsNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeUsername strips surrounding whitespace and at most one leading @.
func NormalizeUsername(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSpace(s)
}

// TweetURL builds the public link for a tweet. An unknown author renders as "i".
func TweetURL(username, tweetID string) string {
	if username == "" {
		username = "i"
	}
	return webBaseURL + "/" + username + "/status/" + tweetID
}

// ProfileURL builds the public link for an account.
func ProfileURL(username string) string {
	return webBaseURL + "/" + username
}
