package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-xtools/auditlog"
	"github.com/anatolykoptev/go-xtools/costs"
	"github.com/anatolykoptev/go-xtools/mcpserver"
)

const version = "0.1.0"

// errToolFailed makes `call` exit non-zero after printing an error envelope.
var errToolFailed = errors.New("tool returned an error")

type rootOptions struct {
	configPath string
	logLevel   string

	logger  *slog.Logger
	handler *log.Logger
	cfg     Config
}

// NewRoot builds the command tree. Logs go to logOut; command output goes to stdout.
func NewRoot(logOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	opts.logger, opts.handler = newLogger(logOut)

	root := &cobra.Command{
		Use:           "xtools",
		Short:         "X/Twitter tools for agents, served over MCP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			level := opts.logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			if err := setLevel(opts.handler, level); err != nil {
				return fmt.Errorf("invalid log level %q: %w", level, err)
			}
			slog.SetDefault(opts.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (credentials fall back to X_* environment variables)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newCallCommand(opts))
	root.AddCommand(newToolsCommand(opts))
	root.AddCommand(newLogCommand(opts))
	root.AddCommand(newPricesCommand())
	root.AddCommand(newVersionCommand())

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRoot(os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a.watch(ctx, opts.configPath)
			a.logger.Info("mcp server starting",
				slog.Int("tools", a.registry.Count()),
				slog.String("audit_log", a.audit.Path()))
			err = mcpserver.Serve(ctx, a.registry, mcpserver.Options{
				Name:    "xtools",
				Version: version,
				Logger:  a.logger,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newCallCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-params]",
		Short: "Invoke one tool and print its result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			params := json.RawMessage("{}")
			if len(args) == 2 {
				params = json.RawMessage(args[1])
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			res := a.registry.Execute(ctx, args[0], "cli", params)
			fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			if res.IsError {
				return errToolFailed
			}
			return nil
		},
	}
}

func newToolsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range a.registry.Tools() {
				fmt.Fprintf(tw, "%s\t%s\n", t.Name(), t.Description())
			}
			return tw.Flush()
		},
	}
}

func newLogCommand(opts *rootOptions) *cobra.Command {
	var (
		limit    int
		truncate bool
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print or clear the audit log of write actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			audit := auditlog.New(opts.cfg.AuditLogPath())
			if truncate {
				audit.Clear()
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", audit.Path())
				return nil
			}
			entries := audit.Entries()
			if limit > 0 && limit < len(entries) {
				entries = entries[len(entries)-limit:]
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp, e.Action, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the most recent N entries")
	cmd.Flags().BoolVar(&truncate, "clear", false, "truncate the log")
	return cmd
}

func newPricesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Print the per-action price table used for cost estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range costs.PriceTable() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Action, costs.FormatUSD(p.Price), p.Unit)
			}
			return tw.Flush()
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
