package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/minigraph/core"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	source  contract.HistorySource
	store   contract.HistoryStore
}

func (h *toolHandler) handleRenderGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	overrides := contract.RenderOverrides{
		Entity:         request.GetString("entity", ""),
		Chart:          request.GetString("chart", ""),
		Aggregate:      request.GetString("aggregate", ""),
		Window:         request.GetString("window", ""),
		Lookback:       request.GetString("lookback", ""),
		At:             request.GetString("at", ""),
		BucketsPerHour: request.GetInt("buckets_per_hour", 0),
		OffsetDays:     request.GetInt("offset_days", 0),
	}
	if err := contract.ApplyOverrides(cfg, overrides, time.Now()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid render parameters: %v", err)), nil
	}

	result, err := core.RenderGraph(ctx, cfg, h.source, core.WithWarnFunc(func(string, error) {}))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListEntities(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return mcp.NewToolResultError("no history store configured"), nil
	}
	entities, err := h.store.Entities(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(entities, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
