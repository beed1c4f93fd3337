package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// sectionParentArgs declares the arguments that locate a section's object.
func sectionParentArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Project the section belongs to")),
		mcp.WithString("stage_name", mcp.Description("Stage of the object, when the object name is not unique in the project")),
		mcp.WithString("object_name", mcp.Required(), mcp.Description("Object the section belongs to, found by name")),
	}
}

// ─── create_section ──────────────────────────────────────────────────────────

// CreateSectionTool handles the create_section MCP tool.
type CreateSectionTool struct {
	catalogue *service.Catalogue
}

// NewCreateSectionTool creates a CreateSectionTool.
func NewCreateSectionTool(c *service.Catalogue) *CreateSectionTool {
	return &CreateSectionTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateSectionTool) Definition() mcp.Tool {
	return newTool("create_section",
		"Add a section (drawing set, plan, work package) to an object. "+
			"Section names are unique within an object.",
		sectionParentArgs(),
		[]mcp.ToolOption{
			mcp.WithString("name", mcp.Required(), mcp.Description("Section name")),
			mcp.WithString("type", mcp.Description("Section type, for example 'structural' or 'electrical'")),
			mcp.WithString("description", mcp.Description("What the section covers")),
			mcp.WithString("responsible", mcp.Description("Responsible person, by name")),
		},
		withDates(false),
		writes(false),
	)
}

// Handle processes the create_section tool call.
func (t *CreateSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "object_name", "name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	sec, err := t.catalogue.CreateSection(ctx, service.CreateSectionInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		Name:        req.GetString("name", ""),
		Type:        req.GetString("type", ""),
		Description: req.GetString("description", ""),
		Responsible: req.GetString("responsible", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Section created\n\n")
	writeSection(&b, *sec)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── search_sections ─────────────────────────────────────────────────────────

// SearchSectionsTool handles the search_sections MCP tool.
type SearchSectionsTool struct {
	catalogue *service.Catalogue
}

// NewSearchSectionsTool creates a SearchSectionsTool.
func NewSearchSectionsTool(c *service.Catalogue) *SearchSectionsTool {
	return &SearchSectionsTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchSectionsTool) Definition() mcp.Tool {
	return newTool("search_sections",
		"List sections filtered by project, object, a name fragment, type and responsible person. "+
			"Without project_name the object is looked up across all projects. "+
			"The response carries the matching records as JSON.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Description("Only sections of this project")),
			mcp.WithString("object_name", mcp.Description("Only sections of this object")),
			mcp.WithString("query", mcp.Description("Part of the section name")),
			mcp.WithString("type", mcp.Description("Only sections of this type")),
			mcp.WithString("responsible", mcp.Description("Only sections this person is responsible for")),
		},
		withPaging(service.MaxLimit),
		readOnly(),
	)
}

// Handle processes the search_sections tool call.
func (t *SearchSectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := intArg(req, "limit", service.DefaultLimit), intArg(req, "offset", 0)
	sections, err := t.catalogue.SearchSections(ctx, service.SectionQuery{
		ProjectName: req.GetString("project_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		Query:       req.GetString("query", ""),
		Type:        req.GetString("type", ""),
		Responsible: req.GetString("responsible", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	if len(sections) == 0 {
		b.WriteString("No sections found.\n")
	} else {
		fmt.Fprintf(&b, "## Sections (%d)\n\n", len(sections))
		for _, sec := range sections {
			writeSection(&b, sec)
		}
		writePageHint(&b, len(sections), limit, offset)
	}
	if sections == nil {
		sections = []service.SectionView{}
	}
	return structured(b.String(), map[string]any{
		"count":    len(sections),
		"sections": sections,
	}), nil
}

// ─── update_section ──────────────────────────────────────────────────────────

// UpdateSectionTool handles the update_section MCP tool.
type UpdateSectionTool struct {
	catalogue *service.Catalogue
}

// NewUpdateSectionTool creates an UpdateSectionTool.
func NewUpdateSectionTool(c *service.Catalogue) *UpdateSectionTool {
	return &UpdateSectionTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateSectionTool) Definition() mcp.Tool {
	return newTool("update_section",
		"Update a section identified by its exact name within an object. Only the supplied fields change. "+
			`Pass "-" as responsible to unassign.`,
		sectionParentArgs(),
		[]mcp.ToolOption{
			mcp.WithString("section_name", mcp.Required(), mcp.Description("Current section name (exact)")),
			mcp.WithString("new_name", mcp.Description("New section name")),
			mcp.WithString("type", mcp.Description("New section type")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("responsible", mcp.Description(`New responsible person, or "-" to unassign`)),
		},
		withDates(true),
		writes(false),
	)
}

// Handle processes the update_section tool call.
func (t *UpdateSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "object_name", "section_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	sec, err := t.catalogue.UpdateSection(ctx, service.UpdateSectionInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		SectionName: req.GetString("section_name", ""),
		NewName:     optionalArg(req, "new_name"),
		Type:        optionalArg(req, "type"),
		Description: optionalArg(req, "description"),
		Responsible: optionalArg(req, "responsible"),
		StartDate:   optionalArg(req, "start_date"),
		EndDate:     optionalArg(req, "end_date"),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Section updated\n\n")
	writeSection(&b, *sec)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── delete_section ──────────────────────────────────────────────────────────

// DeleteSectionTool handles the delete_section MCP tool.
type DeleteSectionTool struct {
	catalogue *service.Catalogue
}

// NewDeleteSectionTool creates a DeleteSectionTool.
func NewDeleteSectionTool(c *service.Catalogue) *DeleteSectionTool {
	return &DeleteSectionTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteSectionTool) Definition() mcp.Tool {
	return newTool("delete_section",
		"Delete a section identified by its exact name within an object.",
		sectionParentArgs(),
		[]mcp.ToolOption{
			mcp.WithString("section_name", mcp.Required(), mcp.Description("Section name (exact)")),
		},
		writes(true),
	)
}

// Handle processes the delete_section tool call.
func (t *DeleteSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name", "object_name", "section_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	r, err := t.catalogue.DeleteSection(ctx, service.DeleteSectionInput{
		ProjectName: req.GetString("project_name", ""),
		StageName:   req.GetString("stage_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		SectionName: req.GetString("section_name", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	var b strings.Builder
	writeCascade(&b, r)
	return mcp.NewToolResultText(b.String()), nil
}
