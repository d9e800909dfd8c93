// Package tools is the registry of MCP tools and resources. It owns the
// call pipeline shared by every transport: argument decoding, schema
// validation, the handler, panic recovery and error normalization. No
// error or panic escapes a call; failures come back as results with
// IsError set.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/schema"
)

// Handler runs a validated tool call. The returned value is rendered by
// TextResult.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a registered tool.
type Tool struct {
	Name        string
	Description string
	Schema      *schema.Schema
	Handler     Handler
}

// CallEvent describes a finished tool call.
type CallEvent struct {
	Tool     string
	IsError  bool
	Duration time.Duration
}

// Observer is notified after every tool call.
type Observer interface {
	Observe(ctx context.Context, ev CallEvent)
}

// Registry holds tools and resources in registration order.
type Registry struct {
	tools     map[string]*Tool
	order     []string
	resources map[string]*Resource
	resOrder  []string
	observers []Observer
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithObserver adds a call observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:     make(map[string]*Tool),
		resources: make(map[string]*Resource),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = &t
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}

	return out
}

// Tool returns the named tool.
func (r *Registry) Tool(name string) (*Tool, bool) {
	t, ok := r.tools[name]

	return t, ok
}

// Call runs the named tool with raw JSON arguments.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (res Result) {
	start := time.Now()
	log := r.logger.With("tool", name)
	log.DebugContext(ctx, "tool call")

	defer func() {
		if p := recover(); p != nil {
			log.ErrorContext(ctx, "tool panicked", "panic", fmt.Sprint(p))
			res = ErrorResult(p)
		}

		ev := CallEvent{Tool: name, IsError: res.IsError, Duration: time.Since(start)}
		level := slog.LevelInfo
		if res.IsError {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "tool finished", "duration", ev.Duration, "isError", ev.IsError)

		for _, o := range r.observers {
			o.Observe(ctx, ev)
		}
	}()

	t, ok := r.tools[name]
	if !ok {
		return ErrorResult(pnerrs.NewValidationError(
			pnerrs.ErrCodeInvalidFormat,
			pnerrs.Issue{Message: "unknown tool " + name},
		))
	}

	args := map[string]any{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &args); err != nil {
			return ErrorResult(pnerrs.NewValidationError(
				pnerrs.ErrCodeInvalidType,
				pnerrs.Issue{Message: "arguments must be a JSON object: " + err.Error()},
			))
		}
	}

	if t.Schema != nil {
		if err := t.Schema.Validate(args); err != nil {
			log.DebugContext(ctx, "invalid arguments", "error", err)

			return ErrorResult(err)
		}
	}

	out, err := t.Handler(ctx, args)
	if err != nil {
		log.WarnContext(ctx, "tool failed", "error", err)

		return ErrorResult(err)
	}

	return TextResult(out)
}

// decode converts validated arguments into T.
func decode[T any](args map[string]any) (T, error) {
	var out T

	raw, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, pnerrs.NewValidationError(
			pnerrs.ErrCodeInvalidType,
			pnerrs.Issue{Message: err.Error()},
		)
	}

	return out, nil
}
