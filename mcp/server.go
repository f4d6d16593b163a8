package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spetersoncode/headshot"
)

// Generator produces images. *client.Client satisfies it.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error)
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// NewServer creates an MCP server exposing the generate_headshot tool.
//
// Example:
//
//	c := client.New(client.Config{APIKeys: client.APIKeys{OpenAI: key}})
//	s := mcp.NewServer(c, mcp.WithName("headshot"))
//	server.ServeStdio(s)
func NewServer(gen Generator, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "headshot-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)
	s.AddTool(GenerateHeadshotTool(), NewGenerateHandler(gen))
	return s
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(gen Generator, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(gen, opts...))
}
