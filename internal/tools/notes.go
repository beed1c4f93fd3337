package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_note ─────────────────────────────────────────────────────────────

// CreateNoteTool handles the create_note MCP tool.
type CreateNoteTool struct {
	catalogue *service.Catalogue
}

// NewCreateNoteTool creates a CreateNoteTool.
func NewCreateNoteTool(c *service.Catalogue) *CreateNoteTool {
	return &CreateNoteTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateNoteTool) Definition() mcp.Tool {
	return newTool("create_note",
		"Record a free-form note, optionally attached to a project and one of its objects.",
		[]mcp.ToolOption{
			mcp.WithString("content", mcp.Required(), mcp.Description("Note text")),
			mcp.WithString("title", mcp.Description("Short title")),
			mcp.WithString("project_name", mcp.Description("Project the note is about")),
			mcp.WithString("object_name", mcp.Description("Object the note is about; needs project_name")),
			mcp.WithString("author", mcp.Description("Author, by name")),
		},
		writes(false),
	)
}

// Handle processes the create_note tool call.
func (t *CreateNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "content"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	n, err := t.catalogue.CreateNote(ctx, service.NoteInput{
		Title:       req.GetString("title", ""),
		Content:     req.GetString("content", ""),
		ProjectName: req.GetString("project_name", ""),
		ObjectName:  req.GetString("object_name", ""),
		Author:      req.GetString("author", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("## Note saved\n\n")
	writeNote(&b, *n)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── search_notes ────────────────────────────────────────────────────────────

// SearchNotesTool handles the search_notes MCP tool.
type SearchNotesTool struct {
	catalogue *service.Catalogue
}

// NewSearchNotesTool creates a SearchNotesTool.
func NewSearchNotesTool(c *service.Catalogue) *SearchNotesTool {
	return &SearchNotesTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchNotesTool) Definition() mcp.Tool {
	return newTool("search_notes",
		"List notes newest first, optionally within one project and matching a text fragment.",
		[]mcp.ToolOption{
			mcp.WithString("query", mcp.Description("Text to look for in title or content")),
			mcp.WithString("project_name", mcp.Description("Only notes attached to this project")),
		},
		withPaging(service.MaxLimit),
		readOnly(),
	)
}

// Handle processes the search_notes tool call.
func (t *SearchNotesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := intArg(req, "limit", service.DefaultLimit), intArg(req, "offset", 0)
	notes, err := t.catalogue.SearchNotes(ctx, service.NoteQuery{
		Query:       req.GetString("query", ""),
		ProjectName: req.GetString("project_name", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return toolError(err), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Notes (%d)\n\n", len(notes))
	for _, n := range notes {
		writeNote(&b, n)
		b.WriteString("\n")
	}
	writePageHint(&b, len(notes), limit, offset)
	return mcp.NewToolResultText(b.String()), nil
}

func writeNote(b *strings.Builder, n service.NoteView) {
	title := n.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(b, "**%s** (%s", title, n.CreatedAt.Format("02.01.2006 15:04"))
	if n.AuthorName != "" {
		fmt.Fprintf(b, ", by %s", n.AuthorName)
	}
	b.WriteString(")\n")
	if n.ProjectName != "" {
		fmt.Fprintf(b, "Project: %s", n.ProjectName)
		if n.ObjectName != "" {
			fmt.Fprintf(b, " / %s", n.ObjectName)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s\n", n.Content)
}
