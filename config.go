package twitter

import "time"

// ClientConfig holds transport configuration for the X API client.
// Credentials are resolved separately (see ResolveCredentials).
type ClientConfig struct {
	// BaseURL is the API root. Default: https://api.x.com
	BaseURL string

	// UploadURL is the media upload endpoint. Default: https://api.x.com/2/media/upload
	UploadURL string

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// MaxRetries bounds transport-level retries of idempotent reads.
	// Mutations are never retried.
	MaxRetries int

	// DefaultRetryAfter is the reset window assumed when a 429 carries no reset header.
	DefaultRetryAfter time.Duration

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = defaultUploadURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.DefaultRetryAfter == 0 {
		cfg.DefaultRetryAfter = defaultRetryAfterSeconds * time.Second
	}
}
