// Command mcp serves the generate_headshot tool over MCP stdio.
//
// Provider keys are read from the environment (a .env file is loaded if
// present): OPENAI_API_KEY, GEMINI_API_KEY and IMAGE_PROVIDER.
//
// Usage:
//
//	go run ./cmd/mcp
//
// Configuration for an MCP client such as Claude Desktop:
//
//	{
//	    "mcpServers": {
//	        "headshot": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/headshot"
//	        }
//	    }
//	}
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spetersoncode/headshot/client"
	"github.com/spetersoncode/headshot/mcp"
)

func main() {
	godotenv.Load() // Load .env file if present

	// stdout carries the protocol; logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	c := client.New(client.Config{
		APIKeys: client.APIKeys{
			OpenAI: os.Getenv("OPENAI_API_KEY"),
			Gemini: os.Getenv("GEMINI_API_KEY"),
		},
		DefaultProvider: os.Getenv("IMAGE_PROVIDER"),
	})

	logger.Info("serving MCP over stdio", "default_provider", c.DefaultProvider())
	if err := mcp.ServeStdio(c,
		mcp.WithName("headshot-mcp"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
