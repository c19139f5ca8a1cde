package noteserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/engine/notes"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerAnalyzeSection(server *mcp.Server, svc *Services) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_section",
		Description: "Summarize one transcript section into a Korean title, 2-3 sentence summary, up to 3 key concepts and up to 2 action points. Falls back to a deterministic summary (fallback=true, with the reason) when the model is unavailable or returns no valid JSON.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.AnalyzeSectionInput) (*mcp.CallToolResult, engine.AnalyzeSectionOutput, error) {
		return svc.analyzeSection(ctx, input)
	})
}

func (s *Services) analyzeSection(ctx context.Context, input engine.AnalyzeSectionInput) (*mcp.CallToolResult, engine.AnalyzeSectionOutput, error) {
	if strings.TrimSpace(input.TimeRange) == "" {
		return nil, engine.AnalyzeSectionOutput{}, fmt.Errorf("timeRange is required: %w", engine.ErrMissingParameter)
	}
	gen, err := s.Generator(input.GeminiAPIKey)
	if err != nil {
		return nil, engine.AnalyzeSectionOutput{}, err
	}

	text := engine.CollapseWhitespace(input.Text)
	section := engine.ProcessedSection{
		TimeRange:   strings.TrimSpace(input.TimeRange),
		RawText:     text,
		CleanedText: text,
		KeyPoints:   input.KeyPoints,
	}
	res := notes.NewSectionAnalyzer(gen, s.Options).Analyze(ctx, section, max(input.Index, 0))

	out := engine.AnalyzeSectionOutput{
		TimeRange: res.Value.TimeRange,
		Title:     res.Value.Title,
		Summary:   res.Value.Summary,
		Concepts:  res.Value.Concepts,
		Actions:   res.Value.Actions,
		Fallback:  res.Fallback,
	}
	if res.Fallback {
		out.Reason = engine.ErrorKind(res.Err)
	}
	return nil, out, nil
}
