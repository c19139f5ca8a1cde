package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

const (
	maxConcepts = 3
	maxActions  = 2
)

var (
	fallbackConcepts = []string{"개념1", "개념2"}
	fallbackActions  = []string{"실행1", "실행2"}
)

const emptySectionSummary = "이 구간의 내용을 분석할 수 없습니다."

// SectionAnalyzer is AI stage 1: one generation call per section.
type SectionAnalyzer struct {
	gen  engine.TextGenerator
	opts Options
}

// NewSectionAnalyzer creates an analyzer. gen may be nil, in which case every
// section takes the local fallback.
func NewSectionAnalyzer(gen engine.TextGenerator, opts Options) *SectionAnalyzer {
	return &SectionAnalyzer{gen: gen, opts: opts.withDefaults()}
}

// Analyze summarizes section number index (0-based). It never fails: any
// upstream or parse error yields the local analysis with the cause in Err.
func (a *SectionAnalyzer) Analyze(ctx context.Context, section engine.ProcessedSection, index int) StageResult[engine.SectionAnalysis] {
	if a.gen == nil {
		return fellBack(a.localAnalysis(section, index), fmt.Errorf("section analysis: no text generator: %w", engine.ErrMissingParameter))
	}

	out, err := engine.GenerateJSON[engine.SectionAnalysis](ctx, a.gen, sectionPrompt(section),
		engine.GenerateOptions{Temperature: 0.7, MaxTokens: 1024})
	if err != nil {
		return fellBack(a.localAnalysis(section, index), err)
	}
	return succeeded(a.normalize(out, section, index))
}

// normalize fills what the model left out and enforces the list bounds.
func (a *SectionAnalyzer) normalize(out engine.SectionAnalysis, section engine.ProcessedSection, index int) engine.SectionAnalysis {
	if strings.TrimSpace(out.TimeRange) == "" {
		out.TimeRange = section.TimeRange
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = sectionPlaceholderTitle(index)
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = a.localSummary(section)
	}
	out.Concepts = capList(out.Concepts, maxConcepts)
	out.Actions = capList(out.Actions, maxActions)
	return out
}

// localAnalysis is the deterministic stage-1 fallback.
func (a *SectionAnalyzer) localAnalysis(section engine.ProcessedSection, index int) engine.SectionAnalysis {
	return engine.SectionAnalysis{
		TimeRange: section.TimeRange,
		Title:     sectionPlaceholderTitle(index),
		Summary:   a.localSummary(section),
		Concepts:  append([]string(nil), fallbackConcepts...),
		Actions:   append([]string(nil), fallbackActions...),
	}
}

// localSummary joins the key points, or else excerpts the cleaned text.
func (a *SectionAnalyzer) localSummary(section engine.ProcessedSection) string {
	if len(section.KeyPoints) > 0 {
		return strings.Join(section.KeyPoints, ". ")
	}
	if text := strings.TrimSpace(section.CleanedText); text != "" {
		return engine.TruncateRunes(text, a.opts.SummaryLen, "...")
	}
	return emptySectionSummary
}

func sectionPlaceholderTitle(index int) string {
	return fmt.Sprintf("구간 %d", index+1)
}

// capList drops blank entries and keeps at most n.
func capList(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, it)
	}
	return out
}

func sectionPrompt(s engine.ProcessedSection) string {
	var sb strings.Builder
	sb.WriteString("다음 영상 구간을 분석하여 구조화된 JSON 응답을 생성해주세요.\n\n")
	sb.WriteString("구간 정보:\n")
	fmt.Fprintf(&sb, "- 시간: %s\n", s.TimeRange)
	fmt.Fprintf(&sb, "- 원문: %s\n", s.RawText)
	fmt.Fprintf(&sb, "- 핵심 포인트: %s\n", strings.Join(s.KeyPoints, ", "))
	if s.Hint != nil {
		fmt.Fprintf(&sb, "- 추정 주제: %s (자막 없이 영상 정보로 구성된 구간)\n", s.Hint.Topic)
	}
	sb.WriteString("\n다음 형식으로 JSON 응답을 생성해주세요:\n\n")
	fmt.Fprintf(&sb, `{
  "timeRange": %q,
  "title": "이 구간의 적절한 제목 (한국어)",
  "summary": "이 구간의 핵심 내용을 2-3문장으로 요약 (한국어)",
  "concepts": ["핵심개념1", "핵심개념2", "핵심개념3"],
  "actions": ["실행가능한액션1", "실행가능한액션2"]
}
`, s.TimeRange)
	sb.WriteString(`
요구사항:
1. title은 구간 내용을 잘 표현하는 명확한 제목
2. summary는 해당 구간의 핵심 내용을 2-3문장으로 요약
3. concepts는 중요한 개념이나 키워드 3개 이하
4. actions는 실제로 적용할 수 있는 구체적인 행동 2개 이하
5. 모든 내용은 한국어로 작성
6. JSON 형식을 정확히 지켜주세요
`)
	return sb.String()
}
