package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/minigraph/internal/contract"
	mcp_internal "github.com/huangsam/minigraph/internal/mcp"
	"github.com/huangsam/minigraph/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Graph: schema.GraphConfig{
			Chart:     schema.LineChart,
			Aggregate: schema.AggAvg,
			Window:    schema.WindowSpec{Kind: schema.RollingWindow, Hours: 24, BucketsPerHour: 1},
		},
	}
}

func call(t *testing.T, baseCfg *contract.Config, source contract.HistorySource, store contract.HistoryStore, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, source, store)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestRenderGraphValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing entity", map[string]any{}, "entity is required"},
		{"invalid chart", map[string]any{"entity": "sensor.temp", "chart": "pie"}, "invalid chart"},
		{"invalid lookback", map[string]any{"entity": "sensor.temp", "lookback": "soon"}, "invalid lookback"},
		{"invalid buckets", map[string]any{"entity": "sensor.temp", "buckets_per_hour": 120.0}, "buckets per hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, baseConfig(), &contract.MockHistorySource{}, nil, "render_graph", tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestRenderGraph(t *testing.T) {
	now := time.Now()
	source := &contract.MockHistorySource{}
	source.On("Fetch", mock.Anything, "sensor.temp", mock.Anything, mock.Anything).Return([]schema.HistorySample{
		schema.NumericSample(now.Add(-90*time.Minute), 10),
		schema.NumericSample(now.Add(-10*time.Minute), 30),
	}, nil)
	source.On("Last", mock.Anything, "sensor.temp", mock.Anything).Return(schema.HistorySample{}, false, nil)

	baseCfg := baseConfig()
	res := call(t, baseCfg, source, nil, "render_graph", map[string]any{
		"entity":    "sensor.temp",
		"chart":     "bar",
		"aggregate": "max",
		"lookback":  "6 hours",
	})
	require.False(t, res.IsError, text(t, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &decoded))
	assert.Equal(t, "sensor.temp", decoded["entity"])
	assert.Equal(t, "bar", decoded["chart"])
	assert.Equal(t, "max", decoded["aggregate"])
	assert.Len(t, decoded["points"], 6)

	// The base config is cloned per request
	assert.Equal(t, schema.LineChart, baseCfg.Graph.Chart)
	assert.Empty(t, baseCfg.Graph.Entity)
}

func TestRenderGraphFetchError(t *testing.T) {
	source := &contract.MockHistorySource{}
	source.On("Fetch", mock.Anything, "sensor.temp", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	res := call(t, baseConfig(), source, nil, "render_graph", map[string]any{"entity": "sensor.temp"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "connection refused")
}

func TestListEntities(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		res := call(t, baseConfig(), nil, nil, "list_entities", nil)
		assert.True(t, res.IsError)
	})

	t.Run("entities", func(t *testing.T) {
		store := &contract.MockHistoryStore{}
		store.On("Entities", mock.Anything).Return([]schema.EntitySummary{{Entity: "sensor.temp", Samples: 4}}, nil)

		res := call(t, baseConfig(), store, store, "list_entities", nil)
		require.False(t, res.IsError)
		var decoded []schema.EntitySummary
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, 4, decoded[0].Samples)
	})

	t.Run("store error", func(t *testing.T) {
		store := &contract.MockHistoryStore{}
		store.On("Entities", mock.Anything).Return(nil, errors.New("locked"))

		res := call(t, baseConfig(), store, store, "list_entities", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "locked")
	})
}
