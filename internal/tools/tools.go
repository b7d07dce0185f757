// Package tools defines the MCP tool surface of the server and wires it
// to the Bugzilla client, the query runner, and the search-options cache.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ngetahun/bugzilla-mcp/internal/bugzilla"
	"github.com/ngetahun/bugzilla-mcp/internal/search"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// identity is the constant answer of the who_am_i tool.
const identity = "Bugzilla MCP server"

// Register adds the Bugzilla tool set to srv.
func Register(srv *server.MCPServer, client *bugzilla.Client, runner *search.Runner, options *search.Options, logger *slog.Logger) {
	srv.AddTool(
		mcp.NewTool("who_am_i",
			mcp.WithDescription("Who am I - Get information about current user"),
		),
		WhoAmIHandler(),
	)

	srv.AddTool(
		mcp.NewTool("timezone",
			mcp.WithDescription("Get the timezone of the Bugzilla instance"),
		),
		TimezoneHandler(client),
	)

	srv.AddTool(
		mcp.NewTool("get_bug",
			mcp.WithDescription("Get a single bug by its numeric id"),
			mcp.WithNumber("bug_id", mcp.Required(), mcp.Description("Bug id to fetch")),
		),
		GetBugHandler(client),
	)

	srv.AddTool(
		mcp.NewTool("query_bugs",
			mcp.WithDescription("Search for bugs using various criteria"),
			mcp.WithString("product", mcp.Description("Product name to search in (e.g. SUSEConnect)")),
			mcp.WithString("component", mcp.Description("Component name to search in (e.g. General)")),
			mcp.WithString("status", mcp.Description("Bug status (e.g. NEW, ASSIGNED, RESOLVED)")),
			mcp.WithString("priority", mcp.Description("Bug priority (e.g. P1, P2, P3, P4, P5)")),
			mcp.WithString("severity", mcp.Description("Bug severity (e.g. blocker, critical, major, normal, minor, trivial)")),
			mcp.WithString("assigned_to", mcp.Description("Email of the person assigned to the bug")),
			mcp.WithString("creator", mcp.Description("Email of the bug creator")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results to return (capped at 20)")),
			mcp.WithNumber("offset", mcp.Description("Number of results to skip")),
		),
		QueryBugsHandler(runner),
	)

	srv.AddTool(
		mcp.NewTool("get_search_options",
			mcp.WithDescription("Get available search options like products, statuses, priorities and severities"),
		),
		SearchOptionsHandler(options, logger),
	)
}

// WhoAmIHandler answers with the fixed server identity.
func WhoAmIHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(identity), nil
	}
}

// TimezoneHandler passes the tracker's timezone response through
// unvalidated. Failures propagate as tool errors.
func TimezoneHandler(client *bugzilla.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := client.Timezone(ctx)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(raw)), nil
	}
}

// GetBugHandler fetches and normalizes a single bug. Failures propagate
// as tool errors.
func GetBugHandler(client *bugzilla.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("bug_id")
		if err != nil {
			return nil, err
		}

		bug, err := client.GetBug(ctx, id)
		if err != nil {
			return nil, err
		}

		record, err := bugzilla.Normalize(bug, client.WebURL(bug.ID))
		if err != nil {
			return nil, err
		}
		return jsonResult(record)
	}
}

// QueryBugsHandler runs a filtered bug search. Execution failures are
// reported as a structured error payload carrying the assembled
// parameters, never as a hard tool error.
func QueryBugsHandler(runner *search.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := search.Input{
			Product:    req.GetString("product", ""),
			Component:  req.GetString("component", ""),
			Status:     req.GetString("status", ""),
			Priority:   req.GetString("priority", ""),
			Severity:   req.GetString("severity", ""),
			AssignedTo: req.GetString("assigned_to", ""),
			Creator:    req.GetString("creator", ""),
			Limit:      req.GetInt("limit", 0),
			Offset:     req.GetInt("offset", runner.Defaults().Offset),
		}

		result, err := runner.Query(ctx, in)
		if err != nil {
			var qe *search.QueryError
			if errors.As(err, &qe) {
				return jsonResult(map[string]any{
					"error":            fmt.Sprintf("Query failed: %v", qe.Unwrap()),
					"query_parameters": qe.Params,
				})
			}
			return nil, err
		}
		return jsonResult(result)
	}
}

// SearchOptionsHandler serves search metadata from the options cache.
// Derivation failures become a structured error payload; a cache file
// that cannot be read as JSON propagates as a tool error.
func SearchOptionsHandler(options *search.Options, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := options.Get(ctx)
		if err != nil {
			var de *search.DeriveError
			if errors.As(err, &de) {
				logger.Error("deriving search options", "error", de.Unwrap())
				return jsonResult(map[string]string{
					"error": fmt.Sprintf("Failed to get search options: %v", de.Unwrap()),
				})
			}
			return nil, err
		}
		return mcp.NewToolResultText(string(raw)), nil
	}
}

// jsonResult marshals v as indented JSON into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
