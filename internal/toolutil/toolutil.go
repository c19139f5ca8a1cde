// Package toolutil provides shared helper functions for go_note entry points
// (MCP tools and the notegen CLI).
package toolutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine/notes"
	"github.com/anatolykoptev/go_note/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// VideoID normalises the video argument of a tool or command.
// Empty or unrecognised input wraps engine.ErrMissingParameter.
func VideoID(input string) (string, error) {
	id, err := sources.ParseVideoID(input)
	if err != nil {
		return "", fmt.Errorf("video is required: %w", err)
	}
	return id, nil
}

// FirstNonEmpty returns the first non-blank value.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ProgressNotifier forwards pipeline progress as MCP progress notifications.
// Without a progress token from the caller it only logs at debug level.
func ProgressNotifier(ctx context.Context, req *mcp.CallToolRequest) notes.ProgressSink {
	var token any
	if req != nil && req.Params != nil {
		token = req.Params.GetProgressToken()
	}
	return notes.ProgressFunc(func(ev notes.ProgressEvent) {
		slog.Debug("note progress", slog.Int("pct", ev.Percentage), slog.String("label", ev.Label))
		if token == nil || req.Session == nil {
			return
		}
		err := req.Session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
			ProgressToken: token,
			Message:       ev.Label + " " + ev.Detail,
			Progress:      float64(ev.Percentage),
			Total:         100,
		})
		if err != nil {
			slog.Debug("progress notification failed", slog.Any("error", err))
		}
	})
}
