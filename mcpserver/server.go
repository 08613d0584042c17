// Package mcpserver publishes a tools.Registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-xtools/tools"
)

// Options identify the server to connecting clients.
type Options struct {
	Name    string
	Version string
	Logger  *slog.Logger
}

func (o *Options) defaults() {
	if o.Name == "" {
		o.Name = "xtools"
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// New builds an MCP server exposing every tool in reg. The registry performs
// parameter validation, so handlers receive the raw arguments.
func New(reg *tools.Registry, opts Options) *mcp.Server {
	opts.defaults()
	server := mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, &mcp.ServerOptions{
		Logger: opts.Logger,
	})
	for _, t := range reg.Tools() {
		server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}, handler(reg, t.Name()))
	}
	opts.Logger.Debug("mcp tools registered", slog.Int("count", reg.Count()))
	return server
}

func handler(reg *tools.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var (
			sessionID string
			args      []byte
		)
		if req != nil {
			if req.Session != nil {
				sessionID = req.Session.ID()
			}
			if req.Params != nil {
				args = req.Params.Arguments
			}
		}
		return toCallResult(reg.Execute(ctx, name, sessionID, args)), nil
	}
}

func toCallResult(res tools.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(res.Content))
	for _, c := range res.Content {
		content = append(content, &mcp.TextContent{Text: c.Text})
	}
	return &mcp.CallToolResult{Content: content, IsError: res.IsError}
}

// Serve runs the server over stdio until ctx is done or the client disconnects.
func Serve(ctx context.Context, reg *tools.Registry, opts Options) error {
	return New(reg, opts).Run(ctx, &mcp.StdioTransport{})
}
