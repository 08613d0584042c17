package twitter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrIdentityLookup is matched by errors.Is for IdentityLookupError.
	ErrIdentityLookup = errors.New("could not retrieve authenticated user ID")

	// ErrNotFound is returned when a lookup succeeds but carries no object.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the X API. Headers use lower-case keys.
type APIError struct {
	Endpoint string
	Status   int
	Headers  map[string]string
	Body     []byte
}

func (e *APIError) Error() string {
	msg := errorMessage(e.Body)
	if msg == "" {
		msg = truncateBytes(e.Body, 200)
	}
	if class := classifyError(e.Body); class != errNone {
		msg = fmt.Sprintf("%s (%s)", msg, class)
	}
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, strings.TrimSpace(msg))
}

// StatusCode returns the HTTP status of the failed response.
func (e *APIError) StatusCode() int { return e.Status }

// Header returns a response header value, case-insensitively.
func (e *APIError) Header(key string) string {
	return headerValue(e.Headers, key)
}

// MissingIDError reports a create-tweet response that carried no tweet id.
type MissingIDError struct {
	Body []byte
}

func (e *MissingIDError) Error() string {
	return "no tweet ID in response"
}

// IdentityLookupError reports that GET /2/users/me returned no usable id.
type IdentityLookupError struct {
	Cause error
}

func (e *IdentityLookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrIdentityLookup.Error(), e.Cause)
	}
	return ErrIdentityLookup.Error()
}

func (e *IdentityLookupError) Is(target error) bool { return target == ErrIdentityLookup }

func (e *IdentityLookupError) Unwrap() error { return e.Cause }

// errorClass categorizes X API error codes for readable messages.
type errorClass int

const (
	errNone          errorClass = iota
	errRateLimit                // 88: rate limit exceeded
	errSuspended                // 64: account suspended
	errLocked                   // 326: account locked
	errAuthExpired              // 32, 89: could not authenticate / invalid token
	errBlocked                  // 161: blocked from performing action
	errNotAuthorized            // 179, 219: not authorized
	errDuplicate                // 187: duplicate status
	errInternal                 // 131: internal error
)

func (c errorClass) String() string {
	switch c {
	case errRateLimit:
		return "rate limit exceeded"
	case errSuspended:
		return "account suspended"
	case errLocked:
		return "account locked"
	case errAuthExpired:
		return "authentication failed"
	case errBlocked:
		return "action blocked"
	case errNotAuthorized:
		return "not authorized"
	case errDuplicate:
		return "duplicate content"
	case errInternal:
		return "internal error"
	}
	return "none"
}

// classifyError inspects a response body for known X error codes.
func classifyError(body []byte) errorClass {
	if !gjson.ValidBytes(body) {
		return errNone
	}
	for _, code := range gjson.GetBytes(body, "errors.#.code").Array() {
		switch code.Int() {
		case 88:
			return errRateLimit
		case 64:
			return errSuspended
		case 326:
			return errLocked
		case 32, 89:
			return errAuthExpired
		case 161:
			return errBlocked
		case 179, 219:
			return errNotAuthorized
		case 187:
			return errDuplicate
		case 131:
			return errInternal
		}
	}
	return errNone
}

// errorMessage extracts a human-readable message from a v2 problem body or a v1.1 error list.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"detail", "title", "errors.0.message", "errors.0.detail", "error"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// Falls back to now+fallback if missing or invalid.
func parseRateLimitReset(v string, fallback time.Duration) time.Time {
	if ts, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(fallback)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
