package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_object ───────────────────────────────────────────────────────────

// CreateObjectTool handles the create_object MCP tool.
type CreateObjectTool struct {
	catalogue *service.Catalogue
}

// NewCreateObjectTool creates a CreateObjectTool.
func NewCreateObjectTool(c *service.Catalogue) *CreateObjectTool {
	return &CreateObjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateObjectTool) Definition() mcp.Tool {
	return newTool("create_object",
		"Add an object (building, block, structure) to a stage. Project and stage are found by name; "+
			"object names are unique within a stage.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the object belongs to")),
			mcp.WithString("stage_name", mcp.Required(), mcp.Description("Stage within the project")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Object name")),
			mcp.WithString("description", mcp.Description("What the object is")),
			mcp.WithString("responsible", mcp.Description("Responsible person, by name")),
		},
		withDates(false),
		writes(false),
	)
}

// Handle processes the create_object tool call.
func (t *CreateObjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "stage_name", "name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	o, err := t.catalogue.CreateObject(ctx, service.CreateObjectInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		Responsible: req.GetString("responsible", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Object created\n\n")
	writeObject(&b, *o)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── search_objects ──────────────────────────────────────────────────────────

// SearchObjectsTool handles the search_objects MCP tool.
type SearchObjectsTool struct {
	catalogue *service.Catalogue
}

// NewSearchObjectsTool creates a SearchObjectsTool.
func NewSearchObjectsTool(c *service.Catalogue) *SearchObjectsTool {
	return &SearchObjectsTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchObjectsTool) Definition() mcp.Tool {
	return newTool("search_objects",
		"List objects filtered by project, stage, a name fragment and responsible person. "+
			"stage_name needs project_name.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Description("Only objects of this project")),
			mcp.WithString("stage_name", mcp.Description("Only objects of this stage")),
			mcp.WithString("query", mcp.Description("Part of the object name")),
			mcp.WithString("responsible", mcp.Description("Only objects this person is responsible for")),
		},
		withPaging(service.MaxLimit),
		readOnly(),
	)
}

// Handle processes the search_objects tool call.
func (t *SearchObjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := intArg(req, "limit", service.DefaultLimit), intArg(req, "offset", 0)
	objects, err := t.catalogue.SearchObjects(ctx, service.ObjectQuery{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		Query:       req.GetString("query", ""),
		Responsible: req.GetString("responsible", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return toolError(err), nil
	}
	if len(objects) == 0 {
		return mcp.NewToolResultText("No objects found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Objects (%d)\n\n", len(objects))
	for _, o := range objects {
		writeObject(&b, o)
	}
	writePageHint(&b, len(objects), limit, offset)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── update_object ───────────────────────────────────────────────────────────

// UpdateObjectTool handles the update_object MCP tool.
type UpdateObjectTool struct {
	catalogue *service.Catalogue
}

// NewUpdateObjectTool creates an UpdateObjectTool.
func NewUpdateObjectTool(c *service.Catalogue) *UpdateObjectTool {
	return &UpdateObjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateObjectTool) Definition() mcp.Tool {
	return newTool("update_object",
		"Update an object identified by its exact name within a stage. Only the supplied fields change. "+
			`Pass "-" as responsible to unassign.`,
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the object belongs to")),
			mcp.WithString("stage_name", mcp.Required(), mcp.Description("Stage the object belongs to")),
			mcp.WithString("object_name", mcp.Required(), mcp.Description("Current object name (exact)")),
			mcp.WithString("new_name", mcp.Description("New object name")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("responsible", mcp.Description(`New responsible person, or "-" to unassign`)),
		},
		withDates(true),
		writes(false),
	)
}

// Handle processes the update_object tool call.
func (t *UpdateObjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "stage_name", "object_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	o, err := t.catalogue.UpdateObject(ctx, service.UpdateObjectInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		NewName:     optionalArg(req, "new_name"),
		Description: optionalArg(req, "description"),
		Responsible: optionalArg(req, "responsible"),
		StartDate:   optionalArg(req, "start_date"),
		EndDate:     optionalArg(req, "end_date"),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Object updated\n\n")
	writeObject(&b, *o)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── delete_object ───────────────────────────────────────────────────────────

// DeleteObjectTool handles the delete_object MCP tool.
type DeleteObjectTool struct {
	catalogue *service.Catalogue
}

// NewDeleteObjectTool creates a DeleteObjectTool.
func NewDeleteObjectTool(c *service.Catalogue) *DeleteObjectTool {
	return &DeleteObjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteObjectTool) Definition() mcp.Tool {
	return newTool("delete_object",
		"Delete an object identified by its exact name within a stage. "+
			"An object with sections is only deleted when cascade is true.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the object belongs to")),
			mcp.WithString("stage_name", mcp.Required(), mcp.Description("Stage the object belongs to")),
			mcp.WithString("object_name", mcp.Required(), mcp.Description("Object name (exact)")),
			mcp.WithBoolean("cascade", mcp.Description("Also delete the object's sections (default: false)")),
		},
		writes(true),
	)
}

// Handle processes the delete_object tool call.
func (t *DeleteObjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "stage_name", "object_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	r, err := t.catalogue.DeleteObject(ctx,
		req.GetString("project_name", ""),
		req.GetString("stage_name", ""),
		req.GetString("object_name", ""),
		boolArg(req, "cascade", false),
	)
	if err != nil {
		return toolError(err), nil
	}
	var b strings.Builder
	writeCascade(&b, r)
	return mcp.NewToolResultText(b.String()), nil
}
