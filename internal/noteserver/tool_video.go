package noteserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoInfo(server *mcp.Server, svc *Services) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_info",
		Description: "Look up YouTube video metadata (title, channel, duration, description, publish date) through the YouTube Data API. Requires a YouTube API key on the server or in the request.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoInfoInput) (*mcp.CallToolResult, engine.VideoInfo, error) {
		return svc.videoInfo(ctx, input)
	})
}

func (s *Services) videoInfo(ctx context.Context, input engine.VideoInfoInput) (*mcp.CallToolResult, engine.VideoInfo, error) {
	videoID, err := toolutil.VideoID(input.Video)
	if err != nil {
		return nil, engine.VideoInfo{}, err
	}
	md := s.Metadata(input.YouTubeAPIKey)
	if md == nil {
		return nil, engine.VideoInfo{}, fmt.Errorf("youtube_api_key is required: %w", engine.ErrMissingParameter)
	}
	info, err := md.Resolve(ctx, videoID)
	if err != nil {
		return nil, engine.VideoInfo{}, err
	}
	return nil, info, nil
}

func registerVideoCaptions(server *mcp.Server, svc *Services) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_captions",
		Description: "Extract the timed captions of a YouTube video (Korean preferred, auto-generated accepted). When no captions can be recovered, returns an empty transcript with fallbackData built from the watch page (title, description, estimated topics, keywords) and a message explaining why.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoCaptionsInput) (*mcp.CallToolResult, engine.CaptionResult, error) {
		return svc.videoCaptions(ctx, input)
	})
}

func (s *Services) videoCaptions(ctx context.Context, input engine.VideoCaptionsInput) (*mcp.CallToolResult, engine.CaptionResult, error) {
	videoID, err := toolutil.VideoID(input.Video)
	if err != nil {
		return nil, engine.CaptionResult{}, err
	}
	res, err := s.Captions.Extract(ctx, videoID)
	if err != nil {
		return nil, engine.CaptionResult{}, err
	}
	if res.Segments == nil {
		res.Segments = []engine.TimedTextSegment{}
	}
	return nil, res, nil
}
