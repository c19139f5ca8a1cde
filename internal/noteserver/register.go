// Package noteserver exposes the note pipeline and its standalone stages as MCP tools.
package noteserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools registered by RegisterTools.
const ToolCount = 4

// RegisterTools registers the note tools on the given MCP server:
// generate_note, video_info, video_captions, analyze_section.
func RegisterTools(server *mcp.Server, svc *Services) {
	registerGenerateNote(server, svc)
	registerVideoInfo(server, svc)
	registerVideoCaptions(server, svc)
	registerAnalyzeSection(server, svc)
}
