// go_note is a YouTube learning-note MCP server.
//
// Exposes four MCP tools: generate_note, video_info, video_captions, analyze_section.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/noteserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
)

func main() {
	initEngine()

	slog.Info("starting go_note",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_note",
		Version: version,
	}, nil)

	svc := noteserver.NewServices(engine.Cfg)
	svc.LogConfig()
	noteserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", noteserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_note",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	engine.Init(noteserver.LoadConfig())
	engine.InitCache(noteserver.LoadCacheConfig())
}
