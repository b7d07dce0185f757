package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/ngetahun/bugzilla-mcp/internal/bugzilla"
	"github.com/ngetahun/bugzilla-mcp/internal/config"
	"github.com/ngetahun/bugzilla-mcp/internal/flag"
	"github.com/ngetahun/bugzilla-mcp/internal/logging"
	"github.com/ngetahun/bugzilla-mcp/internal/search"
	"github.com/ngetahun/bugzilla-mcp/internal/server"
	"github.com/ngetahun/bugzilla-mcp/internal/tools"

	"github.com/containeroo/tinyflags"
)

// Run starts the bugzilla-mcp application.
func Run(ctx context.Context, version, commit string, args []string, w io.Writer, getEnv func(string) string) error {
	// Create a new context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Parse command-line flags
	flags, err := flag.ParseArgs(version, args, w, getEnv)
	if err != nil {
		if tinyflags.IsHelpRequested(err) || tinyflags.IsVersionRequested(err) {
			fmt.Fprint(w, err.Error()) // nolint:errcheck
			return nil
		}
		return fmt.Errorf("parsing error: %w", err)
	}

	// Setup logger
	logger := logging.SetupLogger(flags.LogFormat, flags.LogLevel, w)

	logger.Info("Starting bugzilla-mcp",
		"version", version,
		"commit", commit,
	)

	// Load query defaults
	defaults, err := config.LoadQueryDefaults(flags.DefaultsFile)
	if err != nil {
		return fmt.Errorf("loading defaults error: %w", err)
	}

	// Setup bugzilla client
	baseURL, err := url.Parse(flags.BugzillaURL)
	if err != nil {
		return fmt.Errorf("parsing Bugzilla URL: %w", err)
	}
	auth, method := bugzilla.ResolveAuth(flags.APIKey, flags.Username, flags.Password)
	logger.Debug("bugzilla auth", "method", method)

	client := bugzilla.NewClient(baseURL, auth, flags.SkipTLSVerify, flags.RequestTimeout, flags.MaxRetries)

	// The search-options cache lives in the working directory.
	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	runner := search.NewRunner(client, client.WebURL, defaults)
	options := search.NewOptions(client, workdir, logger)

	// Setup MCP server and run forever
	srv := server.New(version)
	tools.Register(srv, client, runner, options, logger)

	if flags.Transport == flag.TransportHTTP {
		return server.RunHTTPServer(ctx, srv, flags.ListenAddr, logger)
	}
	return server.RunStdioServer(ctx, srv, logger)
}
