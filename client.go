package twitter

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// API is the X API v2 surface consumed by the tools.
// Every call returns its payload together with the quota headers of the response.
type API interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*Response[*Post], error)
	DeletePost(ctx context.Context, tweetID string) (*Response[DeleteResult], error)
	SearchRecent(ctx context.Context, query string, maxResults int) (*Response[[]*Post], error)
	GetPost(ctx context.Context, tweetID string) (*Response[*Post], error)
	GetUserByUsername(ctx context.Context, username string) (*Response[*User], error)
	GetMe(ctx context.Context) (*Response[*User], error)
	GetMentions(ctx context.Context, userID string, maxResults int) (*Response[[]*Post], error)
	Like(ctx context.Context, userID, tweetID string) (*Response[LikeResult], error)
	Unlike(ctx context.Context, userID, tweetID string) (*Response[LikeResult], error)
	Follow(ctx context.Context, sourceUserID, targetUserID string) (*Response[FollowResult], error)
	SendDM(ctx context.Context, participantID, text string) (*Response[DMResult], error)
	ListDMEvents(ctx context.Context, participantID string, maxResults int) (*Response[[]*DMEvent], error)
	UploadMedia(ctx context.Context, data []byte, mimeType string) (*Response[Media], error)
}

// Response pairs decoded data with the rate-limit state reported alongside it.
type Response[T any] struct {
	Data      T
	RateLimit *RateLimitInfo
}

// ClientPair holds the write (OAuth 1.0a) and read handles.
// Read is the same value as Write unless a bearer token was configured.
type ClientPair struct {
	Write API
	Read  API
}

// doer is the transport contract satisfied by *stealth.BrowserClient.
type doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// cooldownOnly never exhausts a local budget: the limiter only remembers
// windows the server reported with a 429.
var cooldownOnly = ratelimit.Config{RequestsPerWindow: math.MaxInt, WindowDuration: time.Minute}

// Client is an X API v2 client bound to one authorization scheme.
type Client struct {
	http    doer
	auth    authorizer
	limiter *ratelimit.Limiter
	cfg     ClientConfig
}

var _ API = (*Client)(nil)

// NewClients builds the write client and, when a bearer token is present, a separate read client.
// No network I/O happens here; the first request is made by the first tool call.
func NewClients(creds Credentials, cfg ClientConfig) (ClientPair, error) {
	cfg.defaults()

	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return ClientPair{}, fmt.Errorf("stealth client: %w", err)
	}

	write := newClient(bc, newOAuth1Signer(creds), cfg)
	pair := ClientPair{Write: write, Read: write}
	if creds.BearerToken != "" {
		pair.Read = newClient(bc, bearerAuth{token: creds.BearerToken}, cfg)
	}
	return pair, nil
}

func newClient(http doer, auth authorizer, cfg ClientConfig) *Client {
	cfg.defaults()
	return &Client{
		http:    http,
		auth:    auth,
		limiter: ratelimit.NewLimiter(cooldownOnly),
		cfg:     cfg,
	}
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
