// Package tools defines the MCP tool catalog: one declarative Tool per
// capability, each composing argument parsing, entity lookups, the
// engine call, and the response envelope. Handlers never hand-assemble
// responses and never let an error escape as anything but an error
// envelope.
package tools

import (
	"context"
	"fmt"
	"log/slog"

	"budgetmcp/internal/engine"
	"budgetmcp/internal/events"
	"budgetmcp/internal/response"
)

// Handler executes one tool call. Returned errors are converted to the
// uniform error envelope by Call.
type Handler func(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error)

// Tool is one entry of the catalog.
type Tool struct {
	Name         string
	Description  string
	InputSchema  map[string]any
	ResourceType string
	ReadOnly     bool
	Destructive  bool
	handler      Handler
}

// EventSink receives mutation events after successful writes. The
// AMQP publisher implements it; a nil sink disables publishing.
type EventSink interface {
	PublishMutation(ctx context.Context, ev *events.MutationEvent) error
}

// Registry routes tool calls and exposes the catalog, optionally
// filtered to read-only tools.
type Registry struct {
	session  *engine.Session
	events   EventSink
	logger   *slog.Logger
	readOnly bool
	order    []string
	byName   map[string]Tool
}

// Option configures a Registry.
type Option func(*Registry)

// WithReadOnly restricts the catalog to non-mutating tools.
func WithReadOnly(readOnly bool) Option {
	return func(r *Registry) { r.readOnly = readOnly }
}

// WithEvents attaches a mutation event sink.
func WithEvents(sink EventSink) Option {
	return func(r *Registry) { r.events = sink }
}

// NewRegistry builds the full catalog bound to an engine session.
func NewRegistry(session *engine.Session, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		session: session,
		logger:  logger,
		byName:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, group := range [][]Tool{
		accountTools(),
		transactionTools(),
		categoryTools(),
		payeeTools(),
		ruleTools(),
		budgetTools(),
		reportTools(),
	} {
		for _, tool := range group {
			r.register(tool)
		}
	}
	return r
}

func (r *Registry) register(tool Tool) {
	if r.readOnly && !tool.ReadOnly {
		return
	}
	r.order = append(r.order, tool.Name)
	r.byName[tool.Name] = tool
}

// List returns the catalog in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Call executes a tool and always returns an envelope: any failure,
// from argument parsing to the engine, is converted into the uniform
// error envelope instead of crossing the transport as an exception.
func (r *Registry) Call(ctx context.Context, name string, args Args) response.Envelope {
	tool, ok := r.byName[name]
	if !ok {
		return response.NewError("tool", fmt.Errorf("unknown tool: %s", name))
	}

	eng, err := r.session.Acquire(ctx)
	if err != nil {
		return response.NewError(tool.ResourceType, err)
	}

	env, err := tool.handler(ctx, eng, args)
	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "error", err)
		return response.NewError(tool.ResourceType, err)
	}

	r.publishMutation(ctx, env)
	return env
}

// publishMutation emits an event for successful mutations. Failures
// are logged and swallowed; the tool call already succeeded.
func (r *Registry) publishMutation(ctx context.Context, env response.Envelope) {
	if r.events == nil || env.Affected == nil {
		return
	}
	switch env.Operation {
	case response.OpCreate, response.OpUpdate, response.OpDelete:
	default:
		return
	}
	ev := events.NewMutationEvent(string(env.Operation), env.ResourceType, env.Affected.IDs, env.Summary)
	if err := r.events.PublishMutation(ctx, ev); err != nil {
		r.logger.Error("failed to publish mutation event",
			"operation", env.Operation,
			"resource_type", env.ResourceType,
			"error", err)
	}
}
