// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, builds the catalogue
// service and injects it into the tools, prompts and resources. No business
// logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/foreman/internal/config"
	"github.com/HendryAvila/foreman/internal/prompts"
	"github.com/HendryAvila/foreman/internal/resources"
	"github.com/HendryAvila/foreman/internal/service"
	"github.com/HendryAvila/foreman/internal/store"
	"github.com/HendryAvila/foreman/internal/telemetry"
	"github.com/HendryAvila/foreman/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New opens the configured store and creates the MCP server with all
// tools, prompts and resources registered. m may be nil.
//
// The returned cleanup function closes the database connection and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, log *slog.Logger, m *telemetry.Metrics) (*server.MCPServer, func(), error) {
	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn("closing store", "error", err)
		}
	}
	log.Info("store opened", "driver", st.Driver())
	return Build(st, cfg, log, m), cleanup, nil
}

// Build creates the MCP server over an already opened store.
func Build(st *store.Store, cfg config.Config, log *slog.Logger, m *telemetry.Metrics) *server.MCPServer {
	opts := service.Options{
		CacheTTL: cfg.Cache.TTL,
		Logger:   log,
	}
	if m != nil {
		opts.OnResolve = m.ObserveResolution
		opts.OnCache = m.ObserveCache
	}
	catalogue := service.New(st, opts)

	s := server.NewMCPServer(
		"foreman",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
		server.WithToolHandlerMiddleware(telemetry.ToolMiddleware(log, m, cfg.Store.QueryTimeout)),
	)

	// --- Projects ---

	createProject := tools.NewCreateProjectTool(catalogue)
	s.AddTool(createProject.Definition(), createProject.Handle)

	searchProjects := tools.NewSearchProjectsTool(catalogue)
	s.AddTool(searchProjects.Definition(), searchProjects.Handle)

	updateProject := tools.NewUpdateProjectTool(catalogue)
	s.AddTool(updateProject.Definition(), updateProject.Handle)

	deleteProject := tools.NewDeleteProjectTool(catalogue)
	s.AddTool(deleteProject.Definition(), deleteProject.Handle)

	// --- Stages ---

	createStage := tools.NewCreateStageTool(catalogue)
	s.AddTool(createStage.Definition(), createStage.Handle)

	searchStages := tools.NewSearchStagesTool(catalogue)
	s.AddTool(searchStages.Definition(), searchStages.Handle)

	updateStage := tools.NewUpdateStageTool(catalogue)
	s.AddTool(updateStage.Definition(), updateStage.Handle)

	deleteStage := tools.NewDeleteStageTool(catalogue)
	s.AddTool(deleteStage.Definition(), deleteStage.Handle)

	// --- Objects ---

	createObject := tools.NewCreateObjectTool(catalogue)
	s.AddTool(createObject.Definition(), createObject.Handle)

	searchObjects := tools.NewSearchObjectsTool(catalogue)
	s.AddTool(searchObjects.Definition(), searchObjects.Handle)

	updateObject := tools.NewUpdateObjectTool(catalogue)
	s.AddTool(updateObject.Definition(), updateObject.Handle)

	deleteObject := tools.NewDeleteObjectTool(catalogue)
	s.AddTool(deleteObject.Definition(), deleteObject.Handle)

	// --- Sections ---

	createSection := tools.NewCreateSectionTool(catalogue)
	s.AddTool(createSection.Definition(), createSection.Handle)

	searchSections := tools.NewSearchSectionsTool(catalogue)
	s.AddTool(searchSections.Definition(), searchSections.Handle)

	updateSection := tools.NewUpdateSectionTool(catalogue)
	s.AddTool(updateSection.Definition(), updateSection.Handle)

	deleteSection := tools.NewDeleteSectionTool(catalogue)
	s.AddTool(deleteSection.Definition(), deleteSection.Handle)

	// --- People ---

	searchUsers := tools.NewSearchUsersTool(catalogue)
	s.AddTool(searchUsers.Definition(), searchUsers.Handle)

	findResponsible := tools.NewFindResponsibleTool(catalogue)
	s.AddTool(findResponsible.Definition(), findResponsible.Handle)

	workload := tools.NewWorkloadTool(catalogue)
	s.AddTool(workload.Definition(), workload.Handle)

	team := tools.NewTeamTool(catalogue)
	s.AddTool(team.Definition(), team.Handle)

	// --- Reports and notes ---

	report := tools.NewReportTool(catalogue)
	s.AddTool(report.Definition(), report.Handle)

	createNote := tools.NewCreateNoteTool(catalogue)
	s.AddTool(createNote.Definition(), createNote.Handle)

	searchNotes := tools.NewSearchNotesTool(catalogue)
	s.AddTool(searchNotes.Definition(), searchNotes.Handle)

	// --- Prompts ---

	briefing := prompts.NewBriefingPrompt()
	s.AddPrompt(briefing.Definition(), briefing.Handle)

	overview := prompts.NewOverviewPrompt()
	s.AddPrompt(overview.Definition(), overview.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(catalogue)
	s.AddResource(resourceHandler.SummaryResource(), resourceHandler.HandleSummary)

	return s
}

// noop is a no-op cleanup function.
func noop() {}

func serverInstructions() string {
	return `You have access to Foreman, a catalogue of construction projects.

## Hierarchy

project → stage → object → section

- Project names are unique across the catalogue.
- Stage names are unique within their project.
- Object names are unique within their stage.
- Section names are unique within their object.
- People (users) are referenced as manager, lead engineer, responsible or author.

## Names, not IDs

Every tool takes names as free text. Parent names are matched by substring
("tower" finds "Tower A"). The record being updated or deleted must be named
exactly.

When a name matches several records the tool returns a numbered list of
candidates. Show the list to the user, ask which one they mean and repeat
the call with the exact name. Never guess.

People are found by first, last or full name; "Ivan Petrov" also matches
"Petrov Ivan".

## Dates

All dates use dd.mm.yyyy (for example 05.03.2025). A start date may not be
later than its end date. In update tools "-" clears a date or unassigns a
person.

## Deleting

Deleting a project, stage or object that still has children fails and
reports how many records depend on it. Only pass cascade=true after the user
has confirmed that everything below should go too.

## Paging

List tools take limit (default 10, max 100) and offset. When a response ends
with "More results may exist", call again with the offset it names.`
}
