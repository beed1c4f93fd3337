// Package tools implements the MCP tool handlers of the catalogue.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, built by NewXTool
//   - Definition() returns the mcp.Tool schema
//   - Handle() validates arguments, calls the catalogue service and renders
//     Markdown text
//
// Domain failures (not found, ambiguous, conflicts, bad dates) are returned
// as tool errors carrying the user-facing text, never as Go errors.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// optionalArg returns the string argument when the caller supplied it, so
// updates can tell "not given" from "set to empty".
func optionalArg(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// missing returns the error text for the first required argument that is
// absent or blank, or "" when all are present.
func missing(req mcp.CallToolRequest, keys ...string) string {
	for _, k := range keys {
		if strings.TrimSpace(req.GetString(k, "")) == "" {
			return fmt.Sprintf("'%s' is required", k)
		}
	}
	return ""
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.Text(err))
}

// ─── Common schema options ───────────────────────────────────────────────────

func withPaging(maxLimit int) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)", service.DefaultLimit, maxLimit)),
			mcp.Min(1),
			mcp.Max(float64(maxLimit)),
			mcp.DefaultNumber(service.DefaultLimit),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip (default: 0)"),
			mcp.Min(0),
			mcp.DefaultNumber(0),
		),
	}
}

func withDates(update bool) []mcp.ToolOption {
	suffix := ""
	if update {
		suffix = `; "-" clears it`
	}
	return []mcp.ToolOption{
		mcp.WithString("start_date", mcp.Description("Start date, dd.mm.yyyy"+suffix)),
		mcp.WithString("end_date", mcp.Description("End date, dd.mm.yyyy, not before the start date"+suffix)),
	}
}

func readOnly() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

func writes(destructive bool) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(destructive),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

func newTool(name, description string, groups ...[]mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return mcp.NewTool(name, opts...)
}

// ─── Rendering ───────────────────────────────────────────────────────────────

// writePageHint appends the continuation hint when a page came back full.
func writePageHint(b *strings.Builder, n, limit, offset int) {
	page := service.NormalizePage(limit, offset)
	if n == page.Limit {
		fmt.Fprintf(b, "\nMore results may exist — call again with offset=%d\n", page.Offset+n)
	}
}

func dateRange(start, end *time.Time) string {
	if start == nil && end == nil {
		return ""
	}
	return domain.FormatDatePtr(start) + " – " + domain.FormatDatePtr(end)
}

func orNone(s string) string {
	if s == "" {
		return "not assigned"
	}
	return s
}

func writeProject(b *strings.Builder, v service.ProjectView) {
	fmt.Fprintf(b, "- **%s** (%s)\n", v.Name, v.Status)
	if v.Client != "" {
		fmt.Fprintf(b, "  Client: %s\n", v.Client)
	}
	fmt.Fprintf(b, "  Manager: %s | Lead engineer: %s\n", orNone(v.ManagerName), orNone(v.LeadEngineerName))
	if v.Description != "" {
		fmt.Fprintf(b, "  %s\n", v.Description)
	}
}

func writeStage(b *strings.Builder, v service.StageView) {
	fmt.Fprintf(b, "- **%s** (project: %s)", v.Name, v.ProjectName)
	if r := dateRange(v.StartDate, v.EndDate); r != "" {
		fmt.Fprintf(b, " %s", r)
	}
	b.WriteString("\n")
	if v.Description != "" {
		fmt.Fprintf(b, "  %s\n", v.Description)
	}
}

func writeObject(b *strings.Builder, v service.ObjectView) {
	fmt.Fprintf(b, "- **%s** (project: %s, stage: %s)\n", v.Name, v.ProjectName, v.StageName)
	fmt.Fprintf(b, "  Responsible: %s", orNone(v.ResponsibleName))
	if r := dateRange(v.StartDate, v.EndDate); r != "" {
		fmt.Fprintf(b, " | %s", r)
	}
	b.WriteString("\n")
	if v.Description != "" {
		fmt.Fprintf(b, "  %s\n", v.Description)
	}
}

func writeSection(b *strings.Builder, v service.SectionView) {
	fmt.Fprintf(b, "- **%s**", v.Name)
	if v.Type != "" {
		fmt.Fprintf(b, " [%s]", v.Type)
	}
	fmt.Fprintf(b, " (project: %s, object: %s)\n", v.ProjectName, v.ObjectName)
	fmt.Fprintf(b, "  Responsible: %s", orNone(v.ResponsibleName))
	if r := dateRange(v.StartDate, v.EndDate); r != "" {
		fmt.Fprintf(b, " | %s", r)
	}
	b.WriteString("\n")
	if v.Description != "" {
		fmt.Fprintf(b, "  %s\n", v.Description)
	}
}

func writeUser(b *strings.Builder, u domain.User) {
	fmt.Fprintf(b, "- **%s** <%s>", u.DisplayName(), u.Email)
	if u.Position != "" {
		fmt.Fprintf(b, ", %s", u.Position)
	}
	var org []string
	if u.Department != "" {
		org = append(org, "department: "+u.Department)
	}
	if u.Team != "" {
		org = append(org, "team: "+u.Team)
	}
	if len(org) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(org, ", "))
	}
	b.WriteString("\n")
}

func writeCascade(b *strings.Builder, r *service.CascadeReport) {
	fmt.Fprintf(b, "Deleted %s %q.\n", r.Entity, r.Name)
	if r.Removed.Total() == 0 {
		return
	}
	b.WriteString("\nAlso removed:\n")
	if r.Removed.Stages > 0 {
		fmt.Fprintf(b, "- %d stage(s)\n", r.Removed.Stages)
	}
	if r.Removed.Objects > 0 {
		fmt.Fprintf(b, "- %d object(s)\n", r.Removed.Objects)
	}
	if r.Removed.Sections > 0 {
		fmt.Fprintf(b, "- %d section(s)\n", r.Removed.Sections)
	}
}

// structured returns a result carrying v as structured content and, for
// clients that only read text, the Markdown followed by the same JSON.
func structured(text string, v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(text)
	}
	return mcp.NewToolResultStructured(v, text+"\n```json\n"+string(data)+"\n```\n")
}
