package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	geonote "github.com/unowned-ai/geonote/pkg"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

type GeoNoteMCPServer struct {
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewGeoNoteMCPServer builds a stdio MCP server exposing the note tools over repo.
// The caller keeps ownership of the store behind repo.
func NewGeoNoteMCPServer(repo *notes.Repository, logger *zap.Logger) *GeoNoteMCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"GeoNote MCP Server",
		geonote.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	opts := []viewmodel.Option{viewmodel.WithLogger(logger)}
	RegisterPingTool(s)
	RegisterCreateNoteTool(s, repo, opts...)
	RegisterUpdateNoteTool(s, repo, opts...)
	RegisterGetNoteTool(s, repo)
	RegisterListNotesTool(s, repo)
	RegisterArchiveNoteTool(s, repo, opts...)
	RegisterDeleteNoteTool(s, repo)
	RegisterSearchNotesTool(s, repo)
	RegisterNotesMapTool(s, repo)

	return &GeoNoteMCPServer{mcpServer: s, logger: logger}
}

// Start runs the stdio event loop until stdin closes.
func (s *GeoNoteMCPServer) Start() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *GeoNoteMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
