package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

func statusValues() []string {
	out := make([]string, len(domain.ProjectStatuses))
	for i, s := range domain.ProjectStatuses {
		out[i] = string(s)
	}
	return out
}

// ─── create_project ──────────────────────────────────────────────────────────

// CreateProjectTool handles the create_project MCP tool.
type CreateProjectTool struct {
	catalogue *service.Catalogue
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(c *service.Catalogue) *CreateProjectTool {
	return &CreateProjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return newTool("create_project",
		"Create a new project. Project names are unique across the catalogue. "+
			"Manager and lead engineer are found by name (first, last or full name).",
		[]mcp.ToolOption{
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("description", mcp.Description("What the project is about")),
			mcp.WithString("manager", mcp.Description("Project manager, by name")),
			mcp.WithString("lead_engineer", mcp.Description("Lead engineer, by name")),
			mcp.WithString("status",
				mcp.Description("Project status (default: active)"),
				mcp.Enum(statusValues()...),
			),
			mcp.WithString("client", mcp.Description("Client or customer")),
		},
		writes(false),
	)
}

// Handle processes the create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	p, err := t.catalogue.CreateProject(ctx, service.CreateProjectInput{
		Name:         req.GetString("name", ""),
		Description:  req.GetString("description", ""),
		Manager:      req.GetString("manager", ""),
		LeadEngineer: req.GetString("lead_engineer", ""),
		Status:       req.GetString("status", ""),
		Client:       req.GetString("client", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Project created\n\n")
	writeProject(&b, *p)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── search_projects ─────────────────────────────────────────────────────────

// SearchProjectsTool handles the search_projects MCP tool.
type SearchProjectsTool struct {
	catalogue *service.Catalogue
}

// NewSearchProjectsTool creates a SearchProjectsTool.
func NewSearchProjectsTool(c *service.Catalogue) *SearchProjectsTool {
	return &SearchProjectsTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchProjectsTool) Definition() mcp.Tool {
	return newTool("search_projects",
		"List projects, optionally filtered by a name fragment, status and manager.",
		[]mcp.ToolOption{
			mcp.WithString("query", mcp.Description("Part of the project name")),
			mcp.WithString("status", mcp.Description("Only projects with this status"), mcp.Enum(statusValues()...)),
			mcp.WithString("manager", mcp.Description("Only projects managed by this person")),
		},
		withPaging(service.MaxLimit),
		readOnly(),
	)
}

// Handle processes the search_projects tool call.
func (t *SearchProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := intArg(req, "limit", service.DefaultLimit), intArg(req, "offset", 0)
	projects, err := t.catalogue.SearchProjects(ctx, service.ProjectQuery{
		Query:   req.GetString("query", ""),
		Status:  req.GetString("status", ""),
		Manager: req.GetString("manager", ""),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return toolError(err), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Projects (%d)\n\n", len(projects))
	for _, p := range projects {
		writeProject(&b, p)
	}
	writePageHint(&b, len(projects), limit, offset)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── update_project ──────────────────────────────────────────────────────────

// UpdateProjectTool handles the update_project MCP tool.
type UpdateProjectTool struct {
	catalogue *service.Catalogue
}

// NewUpdateProjectTool creates an UpdateProjectTool.
func NewUpdateProjectTool(c *service.Catalogue) *UpdateProjectTool {
	return &UpdateProjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateProjectTool) Definition() mcp.Tool {
	return newTool("update_project",
		"Update a project identified by its exact name. Only the supplied fields change. "+
			`Pass "-" as manager or lead_engineer to unassign.`,
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Current project name (exact)")),
			mcp.WithString("new_name", mcp.Description("New project name")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("status", mcp.Description("New status"), mcp.Enum(statusValues()...)),
			mcp.WithString("client", mcp.Description("New client")),
			mcp.WithString("manager", mcp.Description(`New manager by name, or "-" to unassign`)),
			mcp.WithString("lead_engineer", mcp.Description(`New lead engineer by name, or "-" to unassign`)),
		},
		writes(false),
	)
}

// Handle processes the update_project tool call.
func (t *UpdateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	p, err := t.catalogue.UpdateProject(ctx, service.UpdateProjectInput{
		ProjectName:  req.GetString("project_name", ""),
		NewName:      optionalArg(req, "new_name"),
		Description:  optionalArg(req, "description"),
		Status:       optionalArg(req, "status"),
		Client:       optionalArg(req, "client"),
		Manager:      optionalArg(req, "manager"),
		LeadEngineer: optionalArg(req, "lead_engineer"),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Project updated\n\n")
	writeProject(&b, *p)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── delete_project ──────────────────────────────────────────────────────────

// DeleteProjectTool handles the delete_project MCP tool.
type DeleteProjectTool struct {
	catalogue *service.Catalogue
}

// NewDeleteProjectTool creates a DeleteProjectTool.
func NewDeleteProjectTool(c *service.Catalogue) *DeleteProjectTool {
	return &DeleteProjectTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteProjectTool) Definition() mcp.Tool {
	return newTool("delete_project",
		"Delete a project identified by its exact name. A project with stages, objects "+
			"or sections is only deleted when cascade is true, and then everything below it goes too.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project name (exact)")),
			mcp.WithBoolean("cascade", mcp.Description("Also delete every stage, object and section (default: false)")),
		},
		writes(true),
	)
}

// Handle processes the delete_project tool call.
func (t *DeleteProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	r, err := t.catalogue.DeleteProject(ctx, req.GetString("project_name", ""), boolArg(req, "cascade", false))
	if err != nil {
		return toolError(err), nil
	}
	var b strings.Builder
	writeCascade(&b, r)
	return mcp.NewToolResultText(b.String()), nil
}
