package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ClientFactory builds a ClientPair from resolved credentials. NewClients is the default.
type ClientFactory func(Credentials, ClientConfig) (ClientPair, error)

// Provider hands out the process-wide client pair, building it on first use.
// A successful build is memoized until Reconfigure or Reset; a failed build is not,
// so a later call re-resolves credentials.
type Provider struct {
	cfg     ClientConfig
	lookup  func(string) (string, bool)
	factory ClientFactory

	mu       sync.Mutex
	explicit *Credentials
	pair     atomic.Pointer[ClientPair]

	identity *IdentityCache
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithEnvLookup replaces the environment source used for credential fallback.
func WithEnvLookup(lookup func(string) (string, bool)) ProviderOption {
	return func(p *Provider) { p.lookup = lookup }
}

// WithClientFactory replaces NewClients, typically with a fake in tests.
func WithClientFactory(f ClientFactory) ProviderOption {
	return func(p *Provider) { p.factory = f }
}

// NewProvider creates a Provider. No credentials are read until the first client is requested.
func NewProvider(explicit *Credentials, cfg ClientConfig, opts ...ProviderOption) *Provider {
	p := &Provider{
		cfg:      cfg,
		lookup:   LookupEnv,
		factory:  NewClients,
		explicit: cloneCredentials(explicit),
		identity: &IdentityCache{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WriteClient returns the OAuth 1.0a client used for mutations and identity lookup.
func (p *Provider) WriteClient() (API, error) {
	pair, err := p.clients()
	if err != nil {
		return nil, err
	}
	return pair.Write, nil
}

// ReadClient returns the read client (the write client when no bearer token is configured).
func (p *Provider) ReadClient() (API, error) {
	pair, err := p.clients()
	if err != nil {
		return nil, err
	}
	return pair.Read, nil
}

// UserID returns the authenticated account id, looking it up through the write client on first use.
func (p *Provider) UserID(ctx context.Context) (string, error) {
	w, err := p.WriteClient()
	if err != nil {
		return "", err
	}
	return p.identity.UserID(ctx, w)
}

// Identity exposes the identity cache.
func (p *Provider) Identity() *IdentityCache {
	return p.identity
}

// Reconfigure swaps the explicit credentials. The client pair and identity are dropped
// and rebuilt on next use.
func (p *Provider) Reconfigure(explicit *Credentials) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.explicit = cloneCredentials(explicit)
	p.pair.Store(nil)
	p.identity.Reset()
	slog.Info("x clients reconfigured")
}

// Reset drops the client pair and the cached identity.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pair.Store(nil)
	p.identity.Reset()
}

func (p *Provider) clients() (*ClientPair, error) {
	if pair := p.pair.Load(); pair != nil {
		return pair, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pair := p.pair.Load(); pair != nil {
		return pair, nil
	}

	creds, err := ResolveCredentials(p.explicit, p.lookup)
	if err != nil {
		return nil, err
	}
	pair, err := p.factory(creds, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("create x clients: %w", err)
	}
	p.pair.Store(&pair)
	slog.Debug("x clients created", slog.Bool("bearer_read", creds.BearerToken != ""))
	return &pair, nil
}

func cloneCredentials(c *Credentials) *Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// IdentityCache memoizes the authenticated account id for the process lifetime.
// Concurrent misses share one lookup. An empty id is never cached.
type IdentityCache struct {
	mu     sync.RWMutex
	userID string
	valid  bool
	gen    uint64

	group singleflight.Group
}

// UserID returns the cached id, or resolves it with api.GetMe.
func (c *IdentityCache) UserID(ctx context.Context, api API) (string, error) {
	c.mu.RLock()
	if c.valid {
		id := c.userID
		c.mu.RUnlock()
		return id, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	// The lookup is shared, so one caller's cancellation must not fail the others.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		resp, err := api.GetMe(lookupCtx)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", &IdentityLookupError{Cause: err}
			}
			return "", fmt.Errorf("identity lookup: %w", err)
		}
		if resp == nil || resp.Data == nil || resp.Data.ID == "" {
			return "", &IdentityLookupError{}
		}

		id := resp.Data.ID
		c.mu.Lock()
		// A Reset during the lookup invalidates its result.
		if c.gen == gen {
			c.userID = id
			c.valid = true
		}
		c.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Cached returns the cached id and whether it is valid.
func (c *IdentityCache) Cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.valid
}

// Reset clears the cache unconditionally.
func (c *IdentityCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = ""
	c.valid = false
	c.gen++
}
