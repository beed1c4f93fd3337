package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ReportTool handles the generate_project_report MCP tool.
type ReportTool struct {
	catalogue *service.Catalogue
}

// NewReportTool creates a ReportTool.
func NewReportTool(c *service.Catalogue) *ReportTool {
	return &ReportTool{catalogue: c}
}

// Definition returns the MCP tool definition for registration.
func (t *ReportTool) Definition() mcp.Tool {
	return newTool("generate_project_report",
		"Summarise one project: its stages, objects and sections with dates and responsible people, "+
			"totals, unassigned work and assignments per person.",
		[]mcp.ToolOption{
			mcp.WithString("project_name", mcp.Required(), mcp.Description("Project to report on")),
		},
		readOnly(),
	)
}

// Handle processes the generate_project_report tool call.
func (t *ReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg := missing(req, "project_name"); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	r, err := t.catalogue.ProjectReport(ctx, req.GetString("project_name", ""))
	if err != nil {
		return toolError(err), nil
	}

	p := r.Project
	var b strings.Builder
	fmt.Fprintf(&b, "# Project report: %s\n\n", p.Name)
	fmt.Fprintf(&b, "- **Status**: %s\n", p.Status)
	if p.Client != "" {
		fmt.Fprintf(&b, "- **Client**: %s\n", p.Client)
	}
	fmt.Fprintf(&b, "- **Manager**: %s\n", orNone(p.ManagerName))
	fmt.Fprintf(&b, "- **Lead engineer**: %s\n", orNone(p.LeadEngineerName))
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description)
	}

	fmt.Fprintf(&b, "\n## Totals\n\n")
	fmt.Fprintf(&b, "| Stages | Objects | Sections | Unassigned objects | Unassigned sections |\n")
	fmt.Fprintf(&b, "|--------|---------|----------|--------------------|---------------------|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n",
		r.Totals.Stages, r.Totals.Objects, r.Totals.Sections,
		r.Totals.UnassignedObjects, r.Totals.UnassignedSections)

	if len(r.Stages) > 0 {
		b.WriteString("\n## Structure\n")
	}
	for _, st := range r.Stages {
		fmt.Fprintf(&b, "\n### %s", st.Stage.Name)
		if dr := dateRange(st.Stage.StartDate, st.Stage.EndDate); dr != "" {
			fmt.Fprintf(&b, " (%s)", dr)
		}
		b.WriteString("\n\n")
		if len(st.Objects) == 0 {
			b.WriteString("_No objects._\n")
			continue
		}
		for _, o := range st.Objects {
			fmt.Fprintf(&b, "- **%s**, responsible: %s", o.Object.Name, orNone(o.ResponsibleName))
			if dr := dateRange(o.Object.StartDate, o.Object.EndDate); dr != "" {
				fmt.Fprintf(&b, " (%s)", dr)
			}
			b.WriteString("\n")
			for _, sec := range o.Sections {
				fmt.Fprintf(&b, "  - %s", sec.Name)
				if sec.Type != "" {
					fmt.Fprintf(&b, " [%s]", sec.Type)
				}
				if sec.ResponsibleID == nil {
					b.WriteString(", not assigned")
				}
				b.WriteString("\n")
			}
		}
	}

	if len(r.People) > 0 {
		b.WriteString("\n## People\n\n")
		b.WriteString("| Person | Objects | Sections |\n")
		b.WriteString("|--------|---------|----------|\n")
		for _, pl := range r.People {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", pl.Name, pl.Objects, pl.Sections)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
