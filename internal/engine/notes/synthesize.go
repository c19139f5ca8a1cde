package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Synthesis is the stage-2 output: the whole-note insight and the final sections.
type Synthesis struct {
	KeyInsight string               `json:"keyInsight"`
	Sections   []engine.NoteSection `json:"sections"`
}

// NoteSynthesizer is AI stage 2: one generation call over every section analysis.
type NoteSynthesizer struct {
	gen engine.TextGenerator
}

// NewNoteSynthesizer creates a synthesizer. gen may be nil.
func NewNoteSynthesizer(gen engine.TextGenerator) *NoteSynthesizer {
	return &NoteSynthesizer{gen: gen}
}

// Synthesize aggregates analyses into a note body. It never fails: on any error
// the sections are a field-renamed copy of analyses and the insight is generic.
func (s *NoteSynthesizer) Synthesize(ctx context.Context, analyses []engine.SectionAnalysis, info engine.VideoInfo) StageResult[Synthesis] {
	if s.gen == nil {
		return fellBack(localSynthesis(analyses, info), fmt.Errorf("synthesis: no text generator: %w", engine.ErrMissingParameter))
	}

	out, err := engine.GenerateJSON[Synthesis](ctx, s.gen, synthesisPrompt(analyses, info),
		engine.GenerateOptions{Temperature: 0.7, MaxTokens: 2048})
	if err != nil {
		return fellBack(localSynthesis(analyses, info), err)
	}

	// Sections map 1:1 from analyses; a different count keeps the model's
	// insight but takes the direct copy for the sections.
	if len(out.Sections) != len(analyses) {
		return fellBack(Synthesis{
			KeyInsight: strings.TrimSpace(out.KeyInsight),
			Sections:   copySections(analyses),
		}, fmt.Errorf("synthesis: %d sections for %d analyses: %w", len(out.Sections), len(analyses), engine.ErrMalformedOutput))
	}
	for i := range out.Sections {
		out.Sections[i] = fillSection(out.Sections[i], analyses[i])
	}
	out.KeyInsight = strings.TrimSpace(out.KeyInsight)
	return succeeded(out)
}

// localSynthesis is the deterministic stage-2 fallback.
func localSynthesis(analyses []engine.SectionAnalysis, info engine.VideoInfo) Synthesis {
	return Synthesis{
		KeyInsight: fmt.Sprintf("%s에서 유용한 정보를 얻을 수 있습니다.", info.Title),
		Sections:   copySections(analyses),
	}
}

// copySections renames concepts→keyConcepts, actions→actionPoints and summary→content.
func copySections(analyses []engine.SectionAnalysis) []engine.NoteSection {
	out := make([]engine.NoteSection, len(analyses))
	for i, a := range analyses {
		out[i] = engine.NoteSection{
			TimeRange:    a.TimeRange,
			Title:        a.Title,
			Content:      a.Summary,
			KeyConcepts:  nonNil(a.Concepts),
			ActionPoints: nonNil(a.Actions),
		}
	}
	return out
}

// fillSection takes any field the model left blank from its source analysis.
func fillSection(sec engine.NoteSection, a engine.SectionAnalysis) engine.NoteSection {
	if strings.TrimSpace(sec.TimeRange) == "" {
		sec.TimeRange = a.TimeRange
	}
	if strings.TrimSpace(sec.Title) == "" {
		sec.Title = a.Title
	}
	if strings.TrimSpace(sec.Content) == "" {
		sec.Content = a.Summary
	}
	if len(sec.KeyConcepts) == 0 {
		sec.KeyConcepts = a.Concepts
	}
	if len(sec.ActionPoints) == 0 {
		sec.ActionPoints = a.Actions
	}
	sec.KeyConcepts = nonNil(sec.KeyConcepts)
	sec.ActionPoints = nonNil(sec.ActionPoints)
	return sec
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func synthesisPrompt(analyses []engine.SectionAnalysis, info engine.VideoInfo) string {
	sections, _ := json.MarshalIndent(analyses, "", "  ")

	var sb strings.Builder
	sb.WriteString("다음 YouTube 영상의 구간별 분석 결과를 종합하여 체계적인 학습 노트를 생성해주세요.\n\n")
	sb.WriteString("영상 정보:\n")
	fmt.Fprintf(&sb, "- 제목: %s\n", info.Title)
	fmt.Fprintf(&sb, "- 채널: %s\n", info.ChannelTitle)
	fmt.Fprintf(&sb, "- 길이: %s\n", info.Duration)
	if info.Description != "" {
		fmt.Fprintf(&sb, "- 설명: %s\n", descriptionExcerpt(info.Description))
	}
	sb.WriteString("\n구간별 분석 (시간순):\n")
	sb.Write(sections)
	sb.WriteString(`

다음 형식으로 JSON 응답을 생성해주세요:

{
  "keyInsight": "이 영상의 가장 핵심적인 인사이트를 한 문장으로 요약",
  "sections": [
    {
      "timeRange": "0:00-5:00",
      "title": "구간 제목",
      "content": "이 구간의 핵심 내용을 상세히 설명",
      "keyConcepts": ["핵심개념1", "핵심개념2", "핵심개념3"],
      "actionPoints": ["실행가능한액션1", "실행가능한액션2"]
    }
  ]
}

요구사항:
1. keyInsight는 영상의 가장 중요한 메시지를 담아주세요
`)
	fmt.Fprintf(&sb, "2. sections는 구간별 분석과 같은 순서로 정확히 %d개를 작성해주세요\n", len(analyses))
	sb.WriteString(`3. 각 구간의 timeRange는 구간별 분석의 값을 그대로 사용해주세요
4. content는 summary를 바탕으로 2-3문장으로 작성해주세요
5. keyConcepts는 concepts를, actionPoints는 actions를 바탕으로 작성해주세요
6. 모든 내용은 한국어로 작성해주세요
7. JSON 형식을 정확히 지켜주세요
`)
	return sb.String()
}
