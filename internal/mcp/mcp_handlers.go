package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/lochist/core"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.MeasurementStore
}

func (h *toolHandler) handleGetLocSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("path", ""); p != "" {
		abs, err := filepath.Abs(contract.ExpandHome(p))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return mcp.NewToolResultError(fmt.Sprintf("path is not a directory: %s", abs)), nil
		}
		cfg.RootPath = abs
	}
	if m := request.GetInt("months", 0); m != 0 {
		if m < 1 || m > contract.MaxWindowMonths {
			return mcp.NewToolResultError(fmt.Sprintf("months must be between 1 and %d", contract.MaxWindowMonths)), nil
		}
		cfg.Months = m
	}
	if f := request.GetString("fork_repos", ""); f != "" {
		cfg.ForkRepos = contract.SplitList(f, true)
	}
	if r := request.GetString("repos", ""); r != "" {
		cfg.RepoFilter = contract.SplitList(r, true)
	}

	result, err := core.BuildSeries(core.WithSuppressProgress(ctx), cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetMeasurements(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}
	if h.store == nil {
		return mcp.NewToolResultError("measurement store is not initialized"), nil
	}

	var start, end string
	for _, bound := range []struct {
		name string
		dst  *string
	}{{"start", &start}, {"end", &end}} {
		v := request.GetString(bound.name, "")
		if v == "" {
			continue
		}
		t, err := schema.ParseDate(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid %s: %v", bound.name, err)), nil
		}
		*bound.dst = schema.FormatDate(t)
	}

	history := h.store.History(repo)
	if history == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no measurements recorded for %q", repo)), nil
	}

	// Date keys sort lexically in calendar order.
	filtered := schema.NewRepoHistory()
	for date, m := range history.Measurements {
		if (start != "" && date < start) || (end != "" && date > end) {
			continue
		}
		filtered.Measurements[date] = m
	}

	jsonData, _ := json.MarshalIndent(filtered, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return mcp.NewToolResultError("measurement store is not initialized"), nil
	}
	status, err := h.store.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
