package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OverviewPrompt handles the catalogue-overview MCP prompt.
type OverviewPrompt struct{}

// NewOverviewPrompt creates an OverviewPrompt.
func NewOverviewPrompt() *OverviewPrompt {
	return &OverviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OverviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("catalogue-overview",
		mcp.WithPromptDescription(
			"Give me an overview of the whole catalogue: how many projects are active "+
				"and what is being worked on.",
		),
	)
}

// Handle processes the catalogue-overview prompt request.
func (p *OverviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Catalogue overview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please read the `foreman://catalogue/summary` resource and run " +
						"`search_projects` with status=active.\n\n" +
						"Then:\n" +
						"1. Show the counts per project status\n" +
						"2. List the active projects with their manager\n" +
						"3. Suggest which project I should look at first and why",
				),
			},
		},
	}, nil
}
