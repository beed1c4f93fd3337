package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if r == nil || len(r.Messages) == 0 {
		t.Fatal("prompt has no messages")
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", r.Messages[0].Content)
	}
	return tc.Text
}

func TestBriefingPrompt(t *testing.T) {
	p := NewBriefingPrompt()
	if def := p.Definition(); def.Name != "project-briefing" {
		t.Errorf("name = %q", def.Name)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"project": "Tower A"}
	result, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "generate_project_report") || !strings.Contains(text, `"Tower A"`) {
		t.Errorf("unexpected prompt:\n%s", text)
	}
}

func TestBriefingPrompt_MissingProject(t *testing.T) {
	_, err := NewBriefingPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err == nil {
		t.Fatal("expected an error without a project")
	}
}

func TestOverviewPrompt(t *testing.T) {
	p := NewOverviewPrompt()
	if def := p.Definition(); def.Name != "catalogue-overview" {
		t.Errorf("name = %q", def.Name)
	}
	result, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(promptText(t, result), "foreman://catalogue/summary") {
		t.Error("expected the summary resource to be referenced")
	}
}
