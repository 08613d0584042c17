package twitter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	headerRemaining = "x-rate-limit-remaining"
	headerLimit     = "x-rate-limit-limit"
	headerReset     = "x-rate-limit-reset"

	statusTooManyRequests    = 429
	defaultRetryAfterSeconds = 60
)

// RateLimitInfo is the quota state reported by a single response.
// Remaining and Limit are -1 when the header was absent.
type RateLimitInfo struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetsAt  string `json:"resetsAt"`
}

// RateLimitError is the structured, retryable shape returned for 429 responses.
type RateLimitError struct {
	Error             string `json:"error"`
	RateLimited       bool   `json:"rateLimited"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
	ResetsAt          string `json:"resetsAt"`
}

// ExtractRateLimit reads the quota headers. Returns nil only when all three are missing.
func ExtractRateLimit(headers map[string]string) *RateLimitInfo {
	remaining, hasRemaining := lookupHeader(headers, headerRemaining)
	limit, hasLimit := lookupHeader(headers, headerLimit)
	reset, hasReset := lookupHeader(headers, headerReset)
	if !hasRemaining && !hasLimit && !hasReset {
		return nil
	}

	info := &RateLimitInfo{Remaining: -1, Limit: -1}
	if hasRemaining {
		info.Remaining = parseIntOr(remaining, -1)
	}
	if hasLimit {
		info.Limit = parseIntOr(limit, -1)
	}
	if hasReset && reset != "" {
		if epoch, err := strconv.ParseInt(strings.TrimSpace(reset), 10, 64); err == nil {
			info.ResetsAt = isoTime(time.Unix(epoch, 0))
		}
	}
	return info
}

// ParseRateLimitError classifies err as a quota-exceeded failure.
// Returns nil unless err wraps an *APIError with status 429.
func ParseRateLimitError(err error) *RateLimitError {
	return parseRateLimitErrorAt(err, time.Now())
}

func parseRateLimitErrorAt(err error, now time.Time) *RateLimitError {
	var apiErr *APIError
	if err == nil || !errors.As(err, &apiErr) || apiErr == nil {
		return nil
	}
	if apiErr.Status != statusTooManyRequests {
		return nil
	}

	resetsAt := ""
	retryAfter := defaultRetryAfterSeconds
	if reset := apiErr.Header(headerReset); reset != "" {
		if epoch, parseErr := strconv.ParseInt(strings.TrimSpace(reset), 10, 64); parseErr == nil {
			resetsAt = isoTime(time.Unix(epoch, 0))
			secs := float64(epoch) - float64(now.UnixNano())/float64(time.Second)
			retryAfter = max(0, int(math.Ceil(secs)))
		}
	}

	shown := resetsAt
	if shown == "" {
		shown = "unknown"
	}
	return &RateLimitError{
		Error:             fmt.Sprintf("Rate limit exceeded. Retry after %ds (resets at %s).", retryAfter, shown),
		RateLimited:       true,
		RetryAfterSeconds: retryAfter,
		ResetsAt:          resetsAt,
	}
}

// lookupHeader finds a header case-insensitively.
func lookupHeader(headers map[string]string, key string) (string, bool) {
	if v, ok := headers[key]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func headerValue(headers map[string]string, key string) string {
	v, _ := lookupHeader(headers, key)
	return v
}

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// isoTime formats t like JavaScript's Date.toISOString.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
