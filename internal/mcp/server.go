// Package mcp speaks JSON-RPC 2.0 to MCP clients and routes tool
// calls into the registry. Each transport connection gets its own
// engine session so concurrent clients never share connection state.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
	"budgetmcp/internal/tools"
)

const protocolVersion = "2024-11-05"

// SessionFactory builds one engine session and its tool registry per
// transport connection.
type SessionFactory func() (*engine.Session, *tools.Registry)

// Server holds what is shared across connections: the factory, the
// server identity, and the logger.
type Server struct {
	factory SessionFactory
	logger  *slog.Logger
	name    string
	version string
}

func NewServer(factory SessionFactory, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{factory: factory, logger: logger, name: name, version: version}
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

// conn is the per-connection state: one session, one registry.
type conn struct {
	server   *Server
	session  *engine.Session
	registry *tools.Registry
}

func (s *Server) newConn() *conn {
	session, registry := s.factory()
	return &conn{server: s, session: session, registry: registry}
}

func (c *conn) close() {
	if err := c.session.Shutdown(); err != nil {
		c.server.logger.Warn("session shutdown failed", "error", err)
	}
}

// dispatch routes one request. A nil response means the request was a
// notification and nothing goes back on the wire.
func (c *conn) dispatch(ctx context.Context, req jsonRPCRequest) *jsonRPCResponse {
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}
	base := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		base.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools":     map[string]any{"listChanged": false},
				"resources": map[string]any{"listChanged": false},
				"prompts":   map[string]any{"listChanged": false},
			},
			"serverInfo": map[string]any{"name": c.server.name, "version": c.server.version},
		}

	case "ping":
		base.Result = map[string]any{}

	case "tools/list":
		base.Result = map[string]any{"tools": c.toolDefinitions()}

	case "tools/call":
		return c.handleToolCall(ctx, req, base)

	case "resources/list":
		base.Result = map[string]any{"resources": resourceDefinitions()}

	case "resources/read":
		return c.handleResourceRead(ctx, req, base)

	case "prompts/list":
		base.Result = map[string]any{"prompts": promptDefinitions()}

	case "prompts/get":
		return c.handlePromptGet(req, base)

	default:
		base.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
	return &base
}

func (c *conn) toolDefinitions() []map[string]any {
	catalog := c.registry.List()
	defs := make([]map[string]any, len(catalog))
	for i, tool := range catalog {
		def := map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		}
		annotations := map[string]any{}
		if tool.ReadOnly {
			annotations["readOnlyHint"] = true
		}
		if tool.Destructive {
			annotations["destructiveHint"] = true
		}
		if len(annotations) > 0 {
			def["annotations"] = annotations
		}
		defs[i] = def
	}
	return defs
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handleToolCall runs a tool and delivers the envelope twice: verbatim
// as structured content, and JSON-encoded as the text block. Tool
// failures are successful JSON-RPC responses carrying an error
// envelope with isError set; RPC errors are reserved for protocol
// problems.
func (c *conn) handleToolCall(ctx context.Context, req jsonRPCRequest, base jsonRPCResponse) *jsonRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
		return &base
	}
	if params.Name == "" {
		base.Error = &rpcError{Code: codeInvalidParams, Message: "tool name is required"}
		return &base
	}

	env := c.registry.Call(ctx, params.Name, tools.Args(params.Arguments))
	text, err := json.Marshal(env)
	if err != nil {
		base.Error = &rpcError{Code: codeInternal, Message: "encode envelope: " + err.Error()}
		return &base
	}

	base.Result = map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
		"structuredContent": env,
		"isError":           env.Operation == response.OpError,
	}
	return &base
}
