package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/HendryAvila/foreman/internal/config"
	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 5 * time.Second

// Serve runs s on the configured transport until ctx is cancelled.
func Serve(ctx context.Context, s *server.MCPServer, cfg config.Server, log *slog.Logger) error {
	switch cfg.Transport {
	case config.TransportStdio:
		log.Info("serving", "transport", cfg.Transport)
		stdio := server.NewStdioServer(s)
		stdio.SetErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case config.TransportSSE:
		sse := server.NewSSEServer(s, server.WithBaseURL("http://"+cfg.Addr))
		return serveHTTP(ctx, cfg, log, sse.Start, sse.Shutdown)

	case config.TransportHTTP:
		h := server.NewStreamableHTTPServer(s)
		return serveHTTP(ctx, cfg, log, h.Start, h.Shutdown)

	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// serveHTTP starts a network transport and shuts it down gracefully once
// ctx is cancelled.
func serveHTTP(ctx context.Context, cfg config.Server, log *slog.Logger,
	start func(addr string) error, shutdown func(ctx context.Context) error) error {
	log.Info("serving", "transport", cfg.Transport, "addr", cfg.Addr)

	errCh := make(chan error, 1)
	go func() { errCh <- start(cfg.Addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "transport", cfg.Transport)
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down %s transport: %w", cfg.Transport, err)
	}
	return nil
}

// ServeMetrics exposes handler on addr under /metrics until ctx is
// cancelled. An empty addr disables it.
func ServeMetrics(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics.http.error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
}
