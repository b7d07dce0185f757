package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// New constructs the MCP server with the standard capability set.
func New(version string) *mcpserver.MCPServer {
	return mcpserver.NewMCPServer(
		"bugzilla-mcp",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("Tools for querying a Bugzilla bug tracker."),
	)
}

// RunStdioServer serves srv over stdin/stdout until ctx is canceled.
func RunStdioServer(ctx context.Context, srv *mcpserver.MCPServer, logger *slog.Logger) error {
	logger.Info("Starting stdio transport")
	stdio := mcpserver.NewStdioServer(srv)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// RunHTTPServer starts the streamable HTTP transport and handles
// shutdown on context cancellation.
func RunHTTPServer(ctx context.Context, srv *mcpserver.MCPServer, addr string, logger *slog.Logger) error {
	httpServer := mcpserver.NewStreamableHTTPServer(srv)

	// Start the HTTP server in its own goroutine.
	go func() {
		logger.Info("Starting server", "address", addr)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "err", err)
		}
	}()

	// Use a WaitGroup to wait for shutdown to complete.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Wait until the context is canceled.
		<-ctx.Done()
		logger.Info("Shutting down server")
		// The parent context is already canceled, use a fresh one for shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "err", err)
		}
	}()

	wg.Wait() // Wait for the shutdown goroutine to complete.

	return nil
}
