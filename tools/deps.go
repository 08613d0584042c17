package tools

import (
	"context"
	"errors"
	"fmt"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/auditlog"
	"github.com/anatolykoptev/go-xtools/costs"
	"github.com/anatolykoptev/go-xtools/media"
)

// ClientProvider hands out API clients on demand. *twitter.Provider implements it.
type ClientProvider interface {
	WriteClient() (twitter.API, error)
	ReadClient() (twitter.API, error)
	UserID(ctx context.Context) (string, error)
}

// ImageLoader loads an image from a URL or local path. *media.Loader implements it.
type ImageLoader interface {
	Load(ctx context.Context, urlOrPath string) (*media.Image, error)
}

// Deps are the collaborators shared by every tool.
type Deps struct {
	Clients ClientProvider
	Costs   *costs.Ledger
	Audit   *auditlog.Logger
	Images  ImageLoader
}

func (d *Deps) defaults() {
	if d.Costs == nil {
		d.Costs = costs.NewLedger()
	}
	if d.Audit == nil {
		d.Audit = auditlog.New("")
	}
	if d.Images == nil {
		d.Images = media.NewLoader()
	}
}

var _ ClientProvider = (*twitter.Provider)(nil)

var _ ImageLoader = (*media.Loader)(nil)

// failure turns an API error into an envelope. Quota errors come back success-shaped
// so the agent can branch on rateLimited; everything else is "Failed to <action>".
func failure(action string, err error) Result {
	if rl := twitter.ParseRateLimitError(err); rl != nil {
		return OK(rl)
	}
	return Err(fmt.Sprintf("Failed to %s: %s", action, err.Error()))
}

// notFound reports whether err is a successful lookup that returned no object.
func notFound(err error) bool {
	return errors.Is(err, twitter.ErrNotFound)
}

// estimatedCost renders a cost the way every payload reports it.
func estimatedCost(v float64) string {
	return costs.FormatUSD(v)
}

// summaryText shortens free text for audit summaries.
func summaryText(s string) string {
	return auditlog.Truncate(s, 80)
}
