package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ngetahun/bugzilla-mcp/internal/app"
)

// Version and Commit are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	// Logs go to stderr; stdout belongs to the stdio transport.
	if err := app.Run(context.Background(), Version, Commit, os.Args[1:], os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
