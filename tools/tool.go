// Package tools exposes the X account as a set of agent-callable tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a human-readable description for the agent
	Description() string

	// Schema returns the JSON Schema for the tool's input parameters
	Schema() *jsonschema.Schema

	// Execute runs the tool. It never returns a Go error: failures are
	// encoded in the Result.
	Execute(ctx context.Context, sessionID string, params json.RawMessage) Result
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the uniform tool envelope: a single text block holding a JSON document.
type Result struct {
	Content []Content `json:"content"`

	// IsError marks error envelopes for hosts that distinguish them.
	IsError bool `json:"-"`
}

// Text returns the JSON document carried by the result.
func (r Result) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

type errorPayload struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// OK wraps data as a success envelope, indented with two spaces.
func OK(data any) Result {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return Err(fmt.Sprintf("encode result: %v", err))
	}
	return Result{Content: []Content{{Type: "text", Text: string(text)}}}
}

// Err builds an error envelope {error, details?}. Only the first detail is used.
func Err(msg string, details ...any) Result {
	p := errorPayload{Error: msg}
	if len(details) > 0 {
		p.Details = details[0]
	}
	text, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		text, _ = json.MarshalIndent(errorPayload{Error: msg}, "", "  ")
	}
	return Result{Content: []Content{{Type: "text", Text: string(text)}}, IsError: true}
}

// funcTool adapts a typed handler to Tool.
type funcTool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	run         func(ctx context.Context, sessionID string, params json.RawMessage) Result
}

func (t *funcTool) Name() string               { return t.name }
func (t *funcTool) Description() string        { return t.description }
func (t *funcTool) Schema() *jsonschema.Schema { return t.schema }

func (t *funcTool) Execute(ctx context.Context, sessionID string, params json.RawMessage) Result {
	return t.run(ctx, sessionID, params)
}

// newTool builds a Tool whose parameters are decoded into P before fn runs.
func newTool[P any](name, description string, schema *jsonschema.Schema, fn func(ctx context.Context, p P) Result) Tool {
	return &funcTool{
		name:        name,
		description: description,
		schema:      schema,
		run: func(ctx context.Context, _ string, params json.RawMessage) Result {
			var p P
			if len(params) > 0 && string(params) != "null" {
				if err := json.Unmarshal(params, &p); err != nil {
					return Err(fmt.Sprintf("Invalid parameters: %v", err))
				}
			}
			return fn(ctx, p)
		},
	}
}
