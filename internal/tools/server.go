package tools

import (
	"fhirmcp/internal/config"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP stdio server exposing the FHIR tool set.
type Server struct {
	mcpServer *server.MCPServer
	provider  *Provider
}

// NewServer builds the MCP server and registers every FHIR tool on it.
func NewServer(cfg config.Config, version string) *Server {
	s := server.NewMCPServer(
		"fhirmcp",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	provider := NewProvider(cfg)
	provider.Register(s)

	return &Server{mcpServer: s, provider: provider}
}

// Provider exposes the underlying tool provider, for catalog output.
func (s *Server) Provider() *Provider {
	return s.provider
}

// ServeStdio runs the server over stdin/stdout until the stream closes.
// All logging goes to stderr; stdout carries only the protocol stream.
func (s *Server) ServeStdio() error {
	logging.Info("server", "serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}
