package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// request describes a single API call.
type request struct {
	endpoint string
	method   string
	url      string
	query    url.Values
	body     any
}

// do executes req and returns the body and lower-case response headers of a 2xx response.
// Non-2xx responses come back as *APIError. Reads retry on transport errors and 5xx;
// mutations are sent exactly once.
func (c *Client) do(ctx context.Context, req request) ([]byte, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := c.reserve(req.endpoint); err != nil {
		c.recordAPICall(req.endpoint, false, true)
		return nil, nil, err
	}

	fullURL := req.url
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: encode body: %w", req.endpoint, err)
		}
	}

	attempts := 1
	if req.method == http.MethodGet {
		attempts = max(1, c.cfg.MaxRetries)
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := stealth.DefaultBackoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}

		headers := apiHeaders(c.auth.authorization(req.method, fullURL, nil), payload != nil)
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		body, respHdrs, status, err := c.http.DoWithHeaderOrder(req.method, fullURL, headers, reader, apiHeaderOrder)
		if err != nil {
			slog.Debug("x api transport error",
				slog.String("endpoint", req.endpoint),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			lastErr = fmt.Errorf("%s: %w", req.endpoint, err)
			continue
		}

		switch {
		case status >= 200 && status < 300:
			c.recordAPICall(req.endpoint, true, false)
			return body, respHdrs, nil

		case status == statusTooManyRequests:
			c.recordAPICall(req.endpoint, false, true)
			until := parseRateLimitReset(headerValue(respHdrs, headerReset), c.cfg.DefaultRetryAfter)
			c.limiter.MarkRateLimited(req.endpoint, until)
			slog.Warn("x api rate limited",
				slog.String("endpoint", req.endpoint),
				slog.Time("until", until))
			return nil, nil, &APIError{Endpoint: req.endpoint, Status: status, Headers: respHdrs, Body: body}

		case status >= 500:
			c.recordAPICall(req.endpoint, false, false)
			slog.Warn("x api server error",
				slog.String("endpoint", req.endpoint),
				slog.Int("status", status),
				slog.String("body", truncateBytes(body, 500)))
			lastErr = &APIError{Endpoint: req.endpoint, Status: status, Headers: respHdrs, Body: body}
			continue

		default:
			c.recordAPICall(req.endpoint, false, false)
			slog.Debug("x api non-2xx",
				slog.String("endpoint", req.endpoint),
				slog.Int("status", status),
				slog.String("body", truncateBytes(body, 500)))
			return nil, nil, &APIError{Endpoint: req.endpoint, Status: status, Headers: respHdrs, Body: body}
		}
	}
	return nil, nil, lastErr
}

// reserve refuses calls to an endpoint whose 429 window has not reset yet.
// The refusal carries the server's reset time, so callers see the same shape as the original 429.
func (c *Client) reserve(endpoint string) error {
	if !c.limiter.IsRateLimited(endpoint) {
		return nil
	}
	headers := map[string]string{}
	if at := c.limiter.AvailableAt(endpoint); !at.IsZero() {
		headers[headerReset] = strconv.FormatInt(at.Unix(), 10)
	}
	return &APIError{
		Endpoint: endpoint,
		Status:   statusTooManyRequests,
		Headers:  headers,
		Body:     []byte(`{"title":"Too Many Requests","detail":"rate limit window has not reset yet"}`),
	}
}

// getJSON runs a GET and parses the body.
func getJSON[T any](ctx context.Context, c *Client, endpoint, rawURL string, query url.Values, parse func([]byte) (T, error)) (*Response[T], error) {
	return call(ctx, c, request{endpoint: endpoint, method: http.MethodGet, url: rawURL, query: query}, parse)
}

// call runs req and parses a successful body, attaching the response quota state.
func call[T any](ctx context.Context, c *Client, req request, parse func([]byte) (T, error)) (*Response[T], error) {
	body, headers, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.endpoint, err)
	}
	return &Response[T]{Data: data, RateLimit: ExtractRateLimit(headers)}, nil
}
