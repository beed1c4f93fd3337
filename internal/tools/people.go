package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── search_users ────────────────────────────────────────────────────────────

// SearchUsersTool handles the search_users MCP tool.
type SearchUsersTool struct {
	catalogue *service.Catalogue
}

// NewSearchUsersTool creates a SearchUsersTool.
func NewSearchUsersTool(c *service.Catalogue) *SearchUsersTool {
	return &SearchUsersTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchUsersTool) Definition() mcp.Tool {
	return newTool("search_users",
		"Search people by first, last or full name. Two words also match first and last name "+
			"in either order. The response carries the matching users as JSON.",
		[]mcp.ToolOption{
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description(fmt.Sprintf("Name to search for (at most %d characters)", resolve.MaxPersonQuery)),
			),
			mcp.WithString("department", mcp.Description("Only people in this department")),
			mcp.WithString("team", mcp.Description("Only people in this team")),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)", service.DefaultLimit, resolve.MaxCandidates)),
				mcp.Min(1),
				mcp.Max(resolve.MaxCandidates),
				mcp.DefaultNumber(service.DefaultLimit),
			),
		},
		readOnly(),
	)
}

// Handle processes the search_users tool call.
func (t *SearchUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "query"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	users, err := t.catalogue.SearchUsers(ctx, service.UserQuery{
		Query:      req.GetString("query", ""),
		Department: req.GetString("department", ""),
		Team:       req.GetString("team", ""),
		Limit:      intArg(req, "limit", service.DefaultLimit),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	if len(users) == 0 {
		b.WriteString("No users found.\n")
	} else {
		fmt.Fprintf(&b, "## Users (%d)\n\n", len(users))
		for _, u := range users {
			writeUser(&b, u)
		}
	}
	if users == nil {
		users = []domain.User{}
	}
	return structured(b.String(), map[string]any{
		"count": len(users),
		"users": users,
	}), nil
}

// ─── find_responsible ────────────────────────────────────────────────────────

// FindResponsibleTool handles the find_responsible MCP tool.
type FindResponsibleTool struct {
	catalogue *service.Catalogue
}

// NewFindResponsibleTool creates a FindResponsibleTool.
func NewFindResponsibleTool(c *service.Catalogue) *FindResponsibleTool {
	return &FindResponsibleTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *FindResponsibleTool) Definition() mcp.Tool {
	return newTool("find_responsible",
		"Resolve a person's name to exactly one user. When several people match, "+
			"the candidates are listed so the name can be made more specific.",
		[]mcp.ToolOption{
			mcp.WithString("person", mcp.Required(), mcp.Description("Name of the person")),
		},
		readOnly(),
	)
}

// Handle processes the find_responsible tool call.
func (t *FindResponsibleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "person"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	u, err := t.catalogue.FindResponsible(ctx, req.GetString("person", ""))
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Person found\n\n")
	writeUser(&b, *u)
	return structured(b.String(), u), nil
}

// ─── get_user_workload ───────────────────────────────────────────────────────

// WorkloadTool handles the get_user_workload MCP tool.
type WorkloadTool struct {
	catalogue *service.Catalogue
}

// NewWorkloadTool creates a WorkloadTool.
func NewWorkloadTool(c *service.Catalogue) *WorkloadTool {
	return &WorkloadTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *WorkloadTool) Definition() mcp.Tool {
	return newTool("get_user_workload",
		"List what a person is responsible for: projects they manage or lead, objects and sections. "+
			"Optionally limited to one project.",
		[]mcp.ToolOption{
			mcp.WithString("person", mcp.Required(), mcp.Description("Name of the person")),
			mcp.WithString("project_name", mcp.Description("Only assignments within this project")),
		},
		readOnly(),
	)
}

// Handle processes the get_user_workload tool call.
func (t *WorkloadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "person"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	a, err := t.catalogue.Workload(ctx, service.WorkloadInput{
		Person:      req.GetString("person", ""),
		ProjectName: req.GetString("project_name", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Workload: %s\n\n", a.User.DisplayName())
	if len(a.Managed)+len(a.Objects)+len(a.Sections) == 0 {
		b.WriteString("Nothing assigned.\n")
		return mcp.NewToolResultText(b.String()), nil
	}
	if len(a.Managed) > 0 {
		fmt.Fprintf(&b, "### Projects (%d)\n\n", len(a.Managed))
		for _, p := range a.Managed {
			writeProject(&b, p)
		}
		b.WriteString("\n")
	}
	if len(a.Objects) > 0 {
		fmt.Fprintf(&b, "### Objects (%d)\n\n", len(a.Objects))
		for _, o := range a.Objects {
			writeObject(&b, o)
		}
		b.WriteString("\n")
	}
	if len(a.Sections) > 0 {
		fmt.Fprintf(&b, "### Sections (%d)\n\n", len(a.Sections))
		for _, sec := range a.Sections {
			writeSection(&b, sec)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── get_team ────────────────────────────────────────────────────────────────

// TeamTool handles the get_team MCP tool.
type TeamTool struct {
	catalogue *service.Catalogue
}

// NewTeamTool creates a TeamTool.
func NewTeamTool(c *service.Catalogue) *TeamTool {
	return &TeamTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *TeamTool) Definition() mcp.Tool {
	return newTool("get_team",
		"List people grouped by team, optionally limited to one team or department.",
		[]mcp.ToolOption{
			mcp.WithString("team", mcp.Description("Only this team")),
			mcp.WithString("department", mcp.Description("Only this department")),
		},
		readOnly(),
	)
}

// Handle processes the get_team tool call.
func (t *TeamTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := t.catalogue.Team(ctx, service.TeamQuery{
		Team:       req.GetString("team", ""),
		Department: req.GetString("department", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	if len(users) == 0 {
		return mcp.NewToolResultText("No people found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Team (%d people)\n", len(users))
	team := "\x00"
	for _, u := range users {
		if u.Team != team {
			team = u.Team
			heading := team
			if heading == "" {
				heading = "No team"
			}
			fmt.Fprintf(&b, "\n### %s\n\n", heading)
		}
		writeUser(&b, u)
	}
	return mcp.NewToolResultText(b.String()), nil
}
