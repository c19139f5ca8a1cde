package notes

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Validate repairs a note that lacks a usable key insight or has no sections.
// The input is not modified. repaired reports whether anything was replaced.
// This is a structural floor, not a content check.
func Validate(note engine.GeneratedNote, minInsightLen int) (out engine.GeneratedNote, repaired bool) {
	if minInsightLen <= 0 {
		minInsightLen = DefaultOptions().MinInsightLen
	}
	out = note
	out.Sections = append([]engine.NoteSection(nil), note.Sections...)

	if engine.RuneLen(strings.TrimSpace(out.KeyInsight)) < minInsightLen {
		out.KeyInsight = fmt.Sprintf("%s에서 중요한 인사이트와 정보를 얻을 수 있습니다.", out.Title)
		repaired = true
	}

	if len(out.Sections) == 0 {
		duration := out.Duration
		if duration == "" {
			duration = "0:00"
		}
		out.Sections = []engine.NoteSection{{
			TimeRange:    "0:00-" + duration,
			Title:        placeholderTitle,
			Content:      placeholderSummary,
			KeyConcepts:  []string{"핵심개념1", "핵심개념2"},
			ActionPoints: []string{"실행항목1", "실행항목2"},
		}}
		repaired = true
	}
	return out, repaired
}
