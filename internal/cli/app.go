package cli

import (
	"context"
	"log/slog"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/auditlog"
	"github.com/anatolykoptev/go-xtools/costs"
	"github.com/anatolykoptev/go-xtools/media"
	"github.com/anatolykoptev/go-xtools/tools"
)

// app is the wired object graph shared by the commands.
type app struct {
	provider *twitter.Provider
	ledger   *costs.Ledger
	audit    *auditlog.Logger
	registry *tools.Registry
	logger   *slog.Logger
}

func newApp(cfg Config, logger *slog.Logger, opts ...twitter.ProviderOption) (*app, error) {
	a := &app{
		provider: twitter.NewProvider(&cfg.Credentials, cfg.ClientConfig(), opts...),
		ledger:   costs.NewLedger(),
		audit:    auditlog.New(cfg.AuditLogPath()),
		registry: tools.NewRegistry(),
		logger:   logger,
	}
	err := tools.RegisterAll(a.registry, tools.Deps{
		Clients: a.provider,
		Costs:   a.ledger,
		Audit:   a.audit,
		Images:  media.NewLoader(),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// reload applies a changed config file. Only credentials are hot-swapped;
// transport settings take effect on restart.
func (a *app) reload(cfg Config) {
	a.provider.Reconfigure(&cfg.Credentials)
	a.logger.Info("credentials reloaded")
}

// watch reloads credentials whenever path changes, until ctx is done.
func (a *app) watch(ctx context.Context, path string) {
	if path == "" {
		return
	}
	w, err := newConfigWatcher(path, a.logger, a.reload)
	if err != nil {
		a.logger.Warn("config watcher disabled", slog.Any("error", err))
		return
	}
	go w.Run(ctx)
}
