// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the LOC history MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.MeasurementStore) *server.MCPServer {
	s := server.NewMCPServer(
		"LOC History Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: get_loc_series ---
	s.AddTool(mcp.NewTool("get_loc_series",
		mcp.WithDescription("Build monthly lines-of-code series for every repository under a directory, plus their total."),
		mcp.WithString("path", mcp.Description("Directory holding the repositories, or a repository itself (defaults to the configured path).")),
		mcp.WithNumber("months", mcp.Description("Number of calendar months in the window, ending with the current month. Defaults to 12.")),
		mcp.WithString("fork_repos", mcp.Description("Comma-separated repository names excluded from totals.")),
		mcp.WithString("repos", mcp.Description("Comma-separated repository names to include (all when empty).")),
	), h.handleGetLocSeries)

	// --- 2. Tool: get_measurements ---
	s.AddTool(mcp.NewTool("get_measurements",
		mcp.WithDescription("Return the stored daily measurements of one repository."),
		mcp.WithString("repo", mcp.Description("Repository name as recorded in the store."), mcp.Required()),
		mcp.WithString("start", mcp.Description("First date to include (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Last date to include (YYYY-MM-DD).")),
	), h.handleGetMeasurements)

	// --- 3. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report the backend, size and date coverage of the measurement store."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the LOC history MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.MeasurementStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
