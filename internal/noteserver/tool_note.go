package noteserver

import (
	"context"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGenerateNote(server *mcp.Server, svc *Services) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_note",
		Description: "Generate a structured Korean learning note from a YouTube video: title, channel, duration, one key insight, and time-ranged sections with key concepts and action points. Uses the video's captions, or its title/description when no captions exist. Sends progress notifications (10%..100%) when a progress token is supplied. Takes up to a few minutes for long videos.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.GenerateNoteInput) (*mcp.CallToolResult, engine.GeneratedNote, error) {
		return svc.generateNote(ctx, req, input)
	})
}

func (s *Services) generateNote(ctx context.Context, req *mcp.CallToolRequest, input engine.GenerateNoteInput) (*mcp.CallToolResult, engine.GeneratedNote, error) {
	videoID, err := toolutil.VideoID(input.Video)
	if err != nil {
		return nil, engine.GeneratedNote{}, err
	}
	orch, err := s.Orchestrator(input.GeminiAPIKey, input.YouTubeAPIKey)
	if err != nil {
		return nil, engine.GeneratedNote{}, err
	}

	var note engine.GeneratedNote
	err = engine.TrackOperation(ctx, "generate_note", func(ctx context.Context) error {
		var runErr error
		note, runErr = orch.Run(ctx, videoID, toolutil.ProgressNotifier(ctx, req))
		return runErr
	})
	if err != nil {
		return nil, engine.GeneratedNote{}, err
	}
	return nil, note, nil
}
