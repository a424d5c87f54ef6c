package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/geonote/pkg/mapview"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the GeoNote MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_geonote"), nil
}

// RegisterCreateNoteTool registers the create_note tool.
func RegisterCreateNoteTool(s *server.MCPServer, repo *notes.Repository, opts ...viewmodel.Option) {
	createNote := mcp.NewTool("create_note",
		mcp.WithDescription("Creates a new note. Title and body must not be blank."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note.")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Body of the note.")),
		mcp.WithNumber("latitude", mcp.Description("Optional latitude in degrees; requires longitude.")),
		mcp.WithNumber("longitude", mcp.Description("Optional longitude in degrees; requires latitude.")),
		mcp.WithNumber("accuracy", mcp.Description("Optional accuracy radius in meters.")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags.")),
		mcp.WithString("image_uri", mcp.Description("Optional URI of an attached photo.")),
	)
	s.AddTool(createNote, createNoteHandler(repo, opts...))
}

func createNoteHandler(repo *notes.Repository, opts ...viewmodel.Option) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, _ := stringArg(request, "title")
		body, _ := stringArg(request, "body")
		lat, lon, accuracy, err := locationArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		in := viewmodel.NoteInput{
			Title:     title,
			Body:      body,
			Latitude:  lat,
			Longitude: lon,
			Accuracy:  accuracy,
		}
		if tags, ok := stringArg(request, "tags"); ok {
			in.Tags = &tags
		}
		if uri, ok := stringArg(request, "image_uri"); ok && uri != "" {
			in.ImageURI = &uri
		}

		return saveThroughHolder(ctx, repo, in, opts...)
	}
}

// RegisterUpdateNoteTool registers the update_note tool.
func RegisterUpdateNoteTool(s *server.MCPServer, repo *notes.Repository, opts ...viewmodel.Option) {
	updateNote := mcp.NewTool("update_note",
		mcp.WithDescription("Updates an existing note. Omitted fields keep their current value; the note is un-archived."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the note to update.")),
		mcp.WithString("title", mcp.Description("Optional new title.")),
		mcp.WithString("body", mcp.Description("Optional new body.")),
		mcp.WithNumber("latitude", mcp.Description("Optional new latitude; requires longitude.")),
		mcp.WithNumber("longitude", mcp.Description("Optional new longitude; requires latitude.")),
		mcp.WithNumber("accuracy", mcp.Description("Optional new accuracy radius in meters.")),
		mcp.WithBoolean("clear_location", mcp.Description("Remove the stored location.")),
		mcp.WithString("tags", mcp.Description("Optional new comma-separated tags; blank removes them.")),
		mcp.WithString("image_uri", mcp.Description("Optional new photo URI; blank removes it.")),
	)
	s.AddTool(updateNote, updateNoteHandler(repo, opts...))
}

func updateNoteHandler(repo *notes.Repository, opts ...viewmodel.Option) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lat, lon, accuracy, err := locationArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		holder := viewmodel.NewHolder(repo, opts...)
		defer holder.Close()

		if err := holder.LoadNote(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load note %d: %v", id, err)), nil
		}
		current := holder.CurrentNote()
		if current == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Note %d not found.", id)), nil
		}

		in := viewmodel.NoteInput{
			NoteID:    id,
			Title:     current.Title,
			Body:      current.Body,
			Latitude:  current.Latitude,
			Longitude: current.Longitude,
			Accuracy:  current.Accuracy,
			Tags:      current.Tags,
			ImageURI:  current.ImageURI,
		}
		if title, ok := stringArg(request, "title"); ok {
			in.Title = title
		}
		if body, ok := stringArg(request, "body"); ok {
			in.Body = body
		}
		if clearLocation, _ := request.Params.Arguments["clear_location"].(bool); clearLocation {
			in.Latitude, in.Longitude, in.Accuracy = nil, nil, nil
		}
		if lat != nil {
			in.Latitude, in.Longitude, in.Accuracy = lat, lon, accuracy
		}
		if tags, ok := stringArg(request, "tags"); ok {
			in.Tags = &tags
		}
		if uri, ok := stringArg(request, "image_uri"); ok {
			in.ImageURI = nil
			if uri != "" {
				in.ImageURI = &uri
			}
		}

		return saveWith(ctx, holder, repo, in)
	}
}

func saveThroughHolder(ctx context.Context, repo *notes.Repository, in viewmodel.NoteInput, opts ...viewmodel.Option) (*mcp.CallToolResult, error) {
	holder := viewmodel.NewHolder(repo, opts...)
	defer holder.Close()
	return saveWith(ctx, holder, repo, in)
}

func saveWith(ctx context.Context, holder *viewmodel.Holder, repo *notes.Repository, in viewmodel.NoteInput) (*mcp.CallToolResult, error) {
	id, err := holder.SaveNote(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save note: %v", err)), nil
	}
	if msg := holder.ValidationError(); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}

	saved, err := repo.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Note %d saved but could not be read back: %v", id, err)), nil
	}
	return jsonResult(saved)
}

// RegisterGetNoteTool registers the get_note tool.
func RegisterGetNoteTool(s *server.MCPServer, repo *notes.Repository) {
	getNote := mcp.NewTool("get_note",
		mcp.WithDescription("Retrieves a note by id, including archived notes."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the note.")),
	)
	s.AddTool(getNote, getNoteHandler(repo))
}

func getNoteHandler(repo *notes.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		n, err := repo.Get(ctx, id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Note %d not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving note %d: %v", id, err)), nil
		}
		return jsonResult(n)
	}
}

// RegisterListNotesTool registers the list_notes tool.
func RegisterListNotesTool(s *server.MCPServer, repo *notes.Repository) {
	listNotes := mcp.NewTool("list_notes",
		mcp.WithDescription("Lists active notes, most recently updated first."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by (case-insensitive).")),
		mcp.WithNumber("limit", mcp.Description("Optional maximum number of notes to return.")),
	)
	s.AddTool(listNotes, listNotesHandler(repo))
}

func listNotesHandler(repo *notes.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snapshot, err := activeSnapshot(ctx, repo)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list notes: %v", err)), nil
		}
		if tag, ok := stringArg(request, "tag"); ok && tag != "" {
			snapshot = notes.FilterByTag(snapshot, tag)
		}
		limit, err := floatArg(request, "limit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if limit != nil && *limit >= 0 && int(*limit) < len(snapshot) {
			snapshot = snapshot[:int(*limit)]
		}
		return jsonResult(snapshot)
	}
}

// RegisterArchiveNoteTool registers the archive_note tool.
func RegisterArchiveNoteTool(s *server.MCPServer, repo *notes.Repository, opts ...viewmodel.Option) {
	archiveNote := mcp.NewTool("archive_note",
		mcp.WithDescription("Hides a note from the active list. Archiving twice is harmless."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the note to archive.")),
	)
	s.AddTool(archiveNote, archiveNoteHandler(repo, opts...))
}

func archiveNoteHandler(repo *notes.Repository, opts ...viewmodel.Option) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		holder := viewmodel.NewHolder(repo, opts...)
		defer holder.Close()

		if err := holder.Archive(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to archive note %d: %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Note %d archived.", id)), nil
	}
}

// RegisterDeleteNoteTool registers the delete_note tool.
func RegisterDeleteNoteTool(s *server.MCPServer, repo *notes.Repository) {
	deleteNote := mcp.NewTool("delete_note",
		mcp.WithDescription("Permanently deletes a note."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the note to delete.")),
	)
	s.AddTool(deleteNote, deleteNoteHandler(repo))
}

func deleteNoteHandler(repo *notes.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		n, err := repo.Get(ctx, id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("Note %d not found, nothing to delete.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error finding note %d to delete: %v", id, err)), nil
		}
		if err := repo.Delete(ctx, n); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete note %d: %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Note %d deleted successfully.", id)), nil
	}
}

// RegisterSearchNotesTool registers the search_notes tool.
func RegisterSearchNotesTool(s *server.MCPServer, repo *notes.Repository) {
	searchNotes := mcp.NewTool("search_notes",
		mcp.WithDescription("Fuzzy-searches active notes by title, body and tags, best matches first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for.")),
	)
	s.AddTool(searchNotes, searchNotesHandler(repo))
}

func searchNotesHandler(repo *notes.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, ok := stringArg(request, "query")
		if !ok || query == "" {
			return mcp.NewToolResultError("'query' parameter is required and must be a non-empty string."), nil
		}
		snapshot, err := activeSnapshot(ctx, repo)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search notes: %v", err)), nil
		}
		return jsonResult(notes.Search(snapshot, query))
	}
}

// RegisterNotesMapTool registers the notes_map tool.
func RegisterNotesMapTool(s *server.MCPServer, repo *notes.Repository) {
	notesMap := mcp.NewTool("notes_map",
		mcp.WithDescription("Returns map markers for active notes that have a location, plus the map center and zoom."),
	)
	s.AddTool(notesMap, notesMapHandler(repo))
}

type mapResult struct {
	mapview.View
	Count string `json:"count"`
}

func notesMapHandler(repo *notes.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snapshot, err := activeSnapshot(ctx, repo)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load notes: %v", err)), nil
		}
		v := mapview.Build(snapshot)
		if v.Empty() {
			return mcp.NewToolResultText(mapview.EmptyTitle + ". " + mapview.EmptyHint + "."), nil
		}
		return jsonResult(mapResult{View: v, Count: v.CountLabel()})
	}
}
