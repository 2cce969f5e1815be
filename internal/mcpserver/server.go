// Package mcpserver registers every bridge operation as an MCP tool and
// serves the catalog over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/revbridge/ghidramcp/internal/bridge"
	"github.com/revbridge/ghidramcp/internal/version"
)

// Server owns the MCP server instance and its tool catalog.
type Server struct {
	bridge *bridge.Bridge
	log    *zap.SugaredLogger
	mcp    *mcp.Server

	// toolNames is the single source of truth for what got registered.
	toolNames []string
}

// New creates the MCP server and registers the full tool catalog.
func New(b *bridge.Bridge, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		bridge: b,
		log:    log,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "ghidramcp",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// ToolNames returns the names of all registered tools in registration order.
func (s *Server) ToolNames() []string {
	out := make([]string, len(s.toolNames))
	copy(out, s.toolNames)
	return out
}

// ServeStdio runs the MCP server on stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.log.Infow("serving MCP over stdio", "tools", len(s.toolNames))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP runs the MCP server over the streamable HTTP transport on addr.
// When authSecret is non-empty the /mcp route requires a bearer JWT signed
// with that secret. Blocks until ctx is done or the listener fails.
func (s *Server) ServeHTTP(ctx context.Context, addr, authSecret string) error {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	var mcpHandler http.Handler = streamable
	if authSecret != "" {
		mcpHandler = BearerAuth(authSecret)(mcpHandler)
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/mcp", mcpHandler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.log.Infow("serving MCP over http", "addr", addr, "auth", authSecret != "", "tools", len(s.toolNames))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
