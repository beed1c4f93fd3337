package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolMiddleware logs and measures every tool call. When timeout is
// positive each call runs under a context with that deadline, which bounds
// every store call the handler makes. m may be nil.
func ToolMiddleware(log *slog.Logger, m *Metrics, timeout time.Duration) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			start := time.Now()
			res, err := next(ctx, req)
			elapsed := time.Since(start)

			tool := req.Params.Name
			outcome := OutcomeOK
			level := slog.LevelInfo
			switch {
			case err != nil:
				outcome, level = OutcomeError, slog.LevelError
			case res != nil && res.IsError:
				outcome, level = OutcomeToolError, slog.LevelWarn
			}

			attrs := []any{"tool", tool, "duration_ms", elapsed.Milliseconds(), "outcome", outcome}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			log.Log(ctx, level, "tool_call", attrs...)
			if m != nil {
				m.ObserveTool(tool, outcome, elapsed)
			}
			return res, err
		}
	}
}
