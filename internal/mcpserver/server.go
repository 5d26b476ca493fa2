// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Othala tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/kb"
	"github.com/starford/othala/internal/models"
)

// Server wraps the MCP server with Othala tools.
type Server struct {
	mcp *server.MCPServer
	svc *kb.Service
}

// New creates a new MCP server with all Othala tools registered.
func New(svc *kb.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with its tags and backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a markdown note. Inline #hashtags become attached tags "+
			"and [[wikilinks]] that match an existing note title become link edges. "+
			"Read the othala://entity-refs resource for how entities are addressed."),
		mcp.WithString("title", mcp.Description("Optional title; derived from an H1 heading when omitted")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List link edges pointing at a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by a comma-separated status list "+
			"(todo, doing, done, blocked, canceled)."),
		mcp.WithString("status", mcp.Description("Comma-separated statuses; empty for all")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Status defaults to todo, priority to 3 (1 is highest, 5 lowest)."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("status", mcp.Description("Initial status")),
		mcp.WithString("due_at", mcp.Description("Due timestamp, RFC 3339")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("tag_entity",
		mcp.WithDescription("Attach a tag (by slug, created on first use) to any entity."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Tag slug, lowercase kebab-case")),
		mcp.WithString("entity_type", mcp.Required(), mcp.Description("Entity type (note, task, event, journal, file, ...)")),
		mcp.WithString("entity_id", mcp.Required(), mcp.Description("Entity id")),
	), s.tagEntity)

	s.mcp.AddTool(mcp.NewTool("list_entity_tags",
		mcp.WithDescription("List the tags attached to an entity."),
		mcp.WithString("entity_type", mcp.Required(), mcp.Description("Entity type")),
		mcp.WithString("entity_id", mcp.Required(), mcp.Description("Entity id")),
	), s.listEntityTags)

	s.mcp.AddTool(mcp.NewTool("set_property",
		mcp.WithDescription("Set a named property on an entity, overwriting any previous value. "+
			"value_type is one of string, number, boolean, date, json."),
		mcp.WithString("entity_type", mcp.Required(), mcp.Description("Entity type")),
		mcp.WithString("entity_id", mcp.Required(), mcp.Description("Entity id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Property name")),
		mcp.WithString("value_type", mcp.Required(), mcp.Description("Value type")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value serialized as a string")),
	), s.setProperty)

	s.mcp.AddTool(mcp.NewTool("upload_file",
		mcp.WithDescription("Upload a file from a base64 data URI or an http(s) URL. "+
			"Optionally pass entity_type and entity_id to also attach the file to an entity. "+
			"Allowed types: png, jpg, jpeg, gif, webp, svg, pdf. Max size 10 MB."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data: URI or http(s) URL of the file")),
		mcp.WithString("filename", mcp.Description("Optional filename with extension")),
		mcp.WithString("entity_type", mcp.Description("Entity type to attach to")),
		mcp.WithString("entity_id", mcp.Description("Entity id to attach to")),
	), s.uploadFile)

	// Resource: entity addressing guide.
	s.mcp.AddResource(
		mcp.NewResource("othala://entity-refs", "Entity Reference Guide",
			mcp.WithResourceDescription("How entities and their polymorphic metadata are addressed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntityRefsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchNotes(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var title *string
	if v, tErr := req.RequireString("title"); tErr == nil && v != "" {
		title = &v
	}
	note, err := s.svc.CreateNote(ctx, models.NewNote{Title: title, Body: body})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(links) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	var refs []string
	for _, l := range links {
		refs = append(refs, fmt.Sprintf("%s/%s", l.SrcType, l.SrcID))
	}
	return mcp.NewToolResultText(strings.Join(refs, "\n")), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var statuses []models.TaskStatus
	if raw, err := req.RequireString("status"); err == nil && raw != "" {
		for _, st := range strings.Split(raw, ",") {
			statuses = append(statuses, models.TaskStatus(strings.TrimSpace(st)))
		}
	}
	tasks, err := s.svc.ListTasks(ctx, statuses)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tasks, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nt := models.NewTask{Title: title}
	if v, sErr := req.RequireString("status"); sErr == nil && v != "" {
		nt.Status = models.TaskStatus(v)
	}
	if v, dErr := req.RequireString("due_at"); dErr == nil && v != "" {
		due, parseErr := time.Parse(time.RFC3339, v)
		if parseErr != nil {
			return mcp.NewToolResultError("due_at must be RFC 3339"), nil
		}
		nt.DueAt = &due
	}
	task, err := s.svc.CreateTask(ctx, nt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", task.ID)), nil
}

func (s *Server) tagEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityType, err := req.RequireString("entity_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityID, err := req.RequireString("entity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tag, err := s.svc.UpsertTag(ctx, models.NewTag{Slug: slug})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.AttachTag(ctx, tag.ID, models.EntityType(entityType), entityID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("tagged %s/%s with %s", entityType, entityID, slug)), nil
}

func (s *Server) listEntityTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType, err := req.RequireString("entity_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityID, err := req.RequireString("entity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags, err := s.svc.ListTagsForEntity(ctx, models.EntityType(entityType), entityID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	var slugs []string
	for _, t := range tags {
		slugs = append(slugs, t.Slug)
	}
	return mcp.NewToolResultText(strings.Join(slugs, "\n")), nil
}

func (s *Server) setProperty(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType, err := req.RequireString("entity_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityID, err := req.RequireString("entity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	valueType, err := req.RequireString("value_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prop, err := s.svc.SetProp(ctx, models.NewProp{
		EntityType: models.EntityType(entityType),
		EntityID:   entityID,
		Name:       name,
		ValueType:  valueType,
		Value:      value,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("set %s=%s on %s/%s", prop.Name, prop.Value, entityType, entityID)), nil
}

func (s *Server) readEntityRefsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "othala://entity-refs",
			MIMEType: "text/markdown",
			Text:     EntityRefsGuide,
		},
	}, nil
}
