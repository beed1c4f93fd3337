// Package prompts implements MCP prompt handlers for the catalogue.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to call a specific sequence of tools.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// BriefingPrompt handles the project-briefing MCP prompt.
type BriefingPrompt struct{}

// NewBriefingPrompt creates a BriefingPrompt.
func NewBriefingPrompt() *BriefingPrompt {
	return &BriefingPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *BriefingPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("project-briefing",
		mcp.WithPromptDescription(
			"Brief me on one project: structure, schedule, who is responsible "+
				"for what and which work nobody owns yet.",
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project name, or part of it"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the project-briefing prompt request.
func (p *BriefingPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	project := strings.TrimSpace(req.Params.Arguments["project"])
	if project == "" {
		return nil, fmt.Errorf("argument 'project' is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Briefing for project %q", project),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please run `generate_project_report` with project_name=%q.\n\n"+
						"If the project name is ambiguous, show me the candidates and ask which one I mean.\n\n"+
						"Then:\n"+
						"1. Summarise the stages and their dates\n"+
						"2. List objects and sections that have no responsible person\n"+
						"3. Point out stages or objects whose dates are missing or overlap badly\n"+
						"4. Name the people carrying the most assignments and whether that looks risky",
					project,
				)),
			},
		},
	}, nil
}
