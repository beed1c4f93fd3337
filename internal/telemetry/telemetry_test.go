package telemetry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/foreman/internal/cache"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "k", "v")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)

	_, err = NewLogger("loud", "text", &buf)
	assert.Error(t, err)
	_, err = NewLogger("info", "xml", &buf)
	assert.Error(t, err)
}

func callTool(name string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	return req
}

func TestToolMiddleware_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("debug", "text", &buf)
	require.NoError(t, err)
	m := NewMetrics()
	mw := ToolMiddleware(log, m, 0)

	ok := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("fine"), nil
	})
	toolErr := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("not found"), nil
	})
	hardErr := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	ctx := context.Background()
	_, _ = ok(ctx, callTool("search_projects"))
	_, _ = ok(ctx, callTool("search_projects"))
	_, _ = toolErr(ctx, callTool("create_stage"))
	_, err = hardErr(ctx, callTool("create_stage"))
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("search_projects", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("create_stage", OutcomeToolError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("create_stage", OutcomeError)))

	logs := buf.String()
	assert.Contains(t, logs, "level=WARN msg=tool_call tool=create_stage")
	assert.Contains(t, logs, "outcome=error")
}

func TestToolMiddleware_Timeout(t *testing.T) {
	mw := ToolMiddleware(Discard(), nil, time.Second)
	var deadline bool
	h := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, deadline = ctx.Deadline()
		return mcp.NewToolResultText(""), nil
	})
	_, err := h(context.Background(), callTool("get_team"))
	require.NoError(t, err)
	assert.True(t, deadline)
}

func TestMetrics_ObserversAndHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveResolution("project", resolve.Ambiguous)
	m.ObserveCache("users", cache.Hit)
	m.ObserveCache("users", cache.Miss)
	m.ObserveCache("users", cache.Miss)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("project", "ambiguous")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("users", "miss")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `foreman_cache_lookups_total{cache="users",result="hit"} 1`))

	// A second instance registers without panicking.
	assert.NotPanics(t, func() { NewMetrics() })
}
