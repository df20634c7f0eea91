package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"budgetmcp/internal/middleware/ratelimit"
)

// HTTPServer exposes the JSON-RPC dispatch over a single POST
// endpoint. All HTTP clients share one engine session; the stores
// behind it are safe for concurrent use.
type HTTPServer struct {
	http.Server
	server  *Server
	conn    *conn
	token   string
	limiter *ratelimit.Limiter
}

// NewHTTPServer builds the HTTP transport. An empty token disables
// authentication.
func NewHTTPServer(addr, token string, server *Server) *HTTPServer {
	mux := http.NewServeMux()
	h := &HTTPServer{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		server:  server,
		conn:    server.newConn(),
		token:   token,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("/mcp", h.withAuth(h.limiter.Middleware(clientIP, h.handleRPC)))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	return h
}

// Shutdown stops the HTTP listener and releases the engine session.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	err := h.Server.Shutdown(ctx)
	h.limiter.Stop()
	h.conn.close()
	return err
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			auth := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
				h.server.logger.Warn("rejected unauthenticated request", "remote", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (h *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req jsonRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
		return
	}

	resp := h.conn.dispatch(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, *resp)
}

func (h *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.conn.session.Acquire(r.Context()); err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
