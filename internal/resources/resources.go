// Package resources implements MCP resource handlers for the catalogue.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (foreman://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// SummaryURI addresses the catalogue summary resource.
const SummaryURI = "foreman://catalogue/summary"

// StatsSource provides aggregate catalogue counts.
type StatsSource interface {
	Stats(ctx context.Context) (*store.Stats, error)
}

// Handler manages catalogue resource endpoints.
type Handler struct {
	stats StatsSource
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(stats StatsSource) *Handler {
	return &Handler{stats: stats}
}

// SummaryResource returns the MCP resource definition for the catalogue summary.
func (h *Handler) SummaryResource() mcp.Resource {
	return mcp.NewResource(
		SummaryURI,
		"Catalogue summary",
		mcp.WithResourceDescription("Counts of projects by status, stages, objects, sections, users and notes"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSummary returns the catalogue counts as JSON.
func (h *Handler) HandleSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st, err := h.stats.Stats(ctx)
	if err != nil {
		return errorResource(req.Params.URI, apperr.Text(err)), nil
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
