package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_stage ────────────────────────────────────────────────────────────

// CreateStageTool handles the create_stage MCP tool.
type CreateStageTool struct {
	catalogue *service.Catalogue
}

// NewCreateStageTool creates a CreateStageTool.
func NewCreateStageTool(c *service.Catalogue) *CreateStageTool {
	return &CreateStageTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateStageTool) Definition() mcp.Tool {
	return newTool("create_stage",
		"Add a stage to a project. The project is found by name; stage names are unique within a project.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the stage belongs to")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Stage name")),
			mcp.WithString("description", mcp.Description("What happens in this stage")),
		},
		withDates(false),
		writes(false),
	)
}

// Handle processes the create_stage tool call.
func (t *CreateStageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	st, err := t.catalogue.CreateStage(ctx, service.CreateStageInput{
		ProjectName: req.GetString("project_name", ""),
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Stage created\n\n")
	writeStage(&b, *st)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── search_stages ───────────────────────────────────────────────────────────

// SearchStagesTool handles the search_stages MCP tool.
type SearchStagesTool struct {
	catalogue *service.Catalogue
}

// NewSearchStagesTool creates a SearchStagesTool.
func NewSearchStagesTool(c *service.Catalogue) *SearchStagesTool {
	return &SearchStagesTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchStagesTool) Definition() mcp.Tool {
	return newTool("search_stages",
		"List stages, optionally within one project and filtered by a name fragment.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Description("Only stages of this project")),
			mcp.WithString("query", mcp.Description("Part of the stage name")),
		},
		withPaging(service.MaxLimit),
		readOnly(),
	)
}

// Handle processes the search_stages tool call.
func (t *SearchStagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := intArg(req, "limit", service.DefaultLimit), intArg(req, "offset", 0)
	stages, err := t.catalogue.SearchStages(ctx, service.StageQuery{
		ProjectName: req.GetString("project_name", ""),
		Query:       req.GetString("query", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return toolError(err), nil
	}
	if len(stages) == 0 {
		return mcp.NewToolResultText("No stages found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Stages (%d)\n\n", len(stages))
	for _, st := range stages {
		writeStage(&b, st)
	}
	writePageHint(&b, len(stages), limit, offset)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── update_stage ────────────────────────────────────────────────────────────

// UpdateStageTool handles the update_stage MCP tool.
type UpdateStageTool struct {
	catalogue *service.Catalogue
}

// NewUpdateStageTool creates an UpdateStageTool.
func NewUpdateStageTool(c *service.Catalogue) *UpdateStageTool {
	return &UpdateStageTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateStageTool) Definition() mcp.Tool {
	return newTool("update_stage",
		"Update a stage identified by its exact name within a project. Only the supplied fields change.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the stage belongs to")),
			mcp.WithString("stage_name", mcp.Required(), mcp.Description("Current stage name (exact)")),
			mcp.WithString("new_name", mcp.Description("New stage name")),
			mcp.WithString("description", mcp.Description("New description")),
		},
		withDates(true),
		writes(false),
	)
}

// Handle processes the update_stage tool call.
func (t *UpdateStageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "stage_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	st, err := t.catalogue.UpdateStage(ctx, service.UpdateStageInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		NewName:     optionalArg(req, "new_name"),
		Description: optionalArg(req, "description"),
		StartDate:   optionalArg(req, "start_date"),
		EndDate:     optionalArg(req, "end_date"),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Stage updated\n\n")
	writeStage(&b, *st)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── delete_stage ────────────────────────────────────────────────────────────

// DeleteStageTool handles the delete_stage MCP tool.
type DeleteStageTool struct {
	catalogue *service.Catalogue
}

// NewDeleteStageTool creates a DeleteStageTool.
func NewDeleteStageTool(c *service.Catalogue) *DeleteStageTool {
	return &DeleteStageTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteStageTool) Definition() mcp.Tool {
	return newTool("delete_stage",
		"Delete a stage identified by its exact name within a project. "+
			"A stage with objects is only deleted when cascade is true.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the stage belongs to")),
			mcp.WithString("stage_name", mcp.Required(), mcp.Description("Stage name (exact)")),
			mcp.WithBoolean("cascade", mcp.Description("Also delete the stage's objects and sections (default: false)")),
		},
		writes(true),
	)
}

// Handle processes the delete_stage tool call.
func (t *DeleteStageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "stage_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	r, err := t.catalogue.DeleteStage(ctx,
		req.GetString("project_name", ""),
		req.GetString("stage_name", ""),
		boolArg(req, "cascade", false),
	)
	if err != nil {
		return toolError(err), nil
	}
	var b strings.Builder
	writeCascade(&b, r)
	return mcp.NewToolResultText(b.String()), nil
}
