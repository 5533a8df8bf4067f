// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the minigraph MCP server without starting it.
// Graphs are rendered from source; entities are listed from store, which may be nil.
func NewMCPServer(baseCfg *contract.Config, source contract.HistorySource, store contract.HistoryStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Minigraph Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		source:  source,
		store:   store,
	}

	charts := make([]string, len(schema.AllChartTypes))
	for i, c := range schema.AllChartTypes {
		charts[i] = string(c)
	}
	aggregates := make([]string, len(schema.AllAggregateFuncs))
	for i, a := range schema.AllAggregateFuncs {
		aggregates[i] = string(a)
	}

	// --- 1. Tool: render_graph ---
	s.AddTool(mcp.NewTool("render_graph",
		mcp.WithDescription("Aggregate the state history of an entity into buckets and project it into chart geometry."),
		mcp.WithString("entity", mcp.Description("The entity whose history is charted."), mcp.Required()),
		mcp.WithString("chart", mcp.Description("Chart type. Defaults to the configured chart."), mcp.Enum(charts...)),
		mcp.WithString("aggregate", mcp.Description("Reducer applied to each bucket."), mcp.Enum(aggregates...)),
		mcp.WithString("window", mcp.Description("Window kind."), mcp.Enum("rolling", "calendar", "realtime")),
		mcp.WithString("lookback", mcp.Description("Length of a rolling window (e.g., '24 hours', '7d', '90m').")),
		mcp.WithNumber("buckets_per_hour", mcp.Description("Bucket resolution, between 1 and 60.")),
		mcp.WithNumber("offset_days", mcp.Description("Calendar windows only: days back from today.")),
		mcp.WithString("at", mcp.Description("Render instant as RFC3339 or 'N units ago'. Defaults to now.")),
	), h.handleRenderGraph)

	// --- 2. Tool: list_entities ---
	s.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List the entities recorded in the history store with their sample counts and time range."),
	), h.handleListEntities)

	return s
}

// StartMCPServer starts the minigraph MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, source contract.HistorySource, store contract.HistoryStore) error {
	s := NewMCPServer(baseCfg, source, store)
	return server.ServeStdio(s)
}
