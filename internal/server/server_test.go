package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/HendryAvila/foreman/internal/config"
	"github.com/HendryAvila/foreman/internal/telemetry"
	"github.com/HendryAvila/foreman/internal/testutil"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*server.MCPServer, *telemetry.Metrics) {
	t.Helper()
	m := telemetry.NewMetrics()
	return Build(testutil.NewStore(t), config.Default(), telemetry.Discard(), m), m
}

// rpc sends one JSON-RPC request and decodes the result into out.
func rpc(t *testing.T, s *server.MCPServer, method string, params any, out any) {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.Nil(t, envelope.Error, "rpc %s failed", method)
	require.NoError(t, json.Unmarshal(envelope.Result, out))
}

func TestBuild_RegistersCatalogue(t *testing.T) {
	s, _ := newTestServer(t)

	var tools struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	rpc(t, s, "tools/list", map[string]any{}, &tools)
	names := make([]string, 0, len(tools.Tools))
	for _, tl := range tools.Tools {
		names = append(names, tl.Name)
	}
	assert.Len(t, names, 23)
	assert.Contains(t, names, "create_section")
	assert.Contains(t, names, "generate_project_report")

	var prompts struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	rpc(t, s, "prompts/list", map[string]any{}, &prompts)
	assert.Len(t, prompts.Prompts, 2)

	var resources struct {
		Resources []struct {
			URI string `json:"uri"`
		} `json:"resources"`
	}
	rpc(t, s, "resources/list", map[string]any{}, &resources)
	require.Len(t, resources.Resources, 1)
	assert.Equal(t, "foreman://catalogue/summary", resources.Resources[0].URI)
}

func TestBuild_ToolCallsAreMeasured(t *testing.T) {
	s, m := newTestServer(t)

	var result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	rpc(t, s, "tools/call", map[string]any{
		"name":      "create_project",
		"arguments": map[string]any{"name": "Tower A"},
	}, &result)
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	assert.Contains(t, result.Content[0].Text, "Tower A")

	rpc(t, s, "tools/call", map[string]any{
		"name":      "create_project",
		"arguments": map[string]any{"name": "Tower A"},
	}, &result)
	assert.True(t, result.IsError)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var calls float64
	for _, f := range families {
		if f.GetName() != "foreman_tool_calls_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			calls += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), calls)
}
