package notes

import (
	"regexp"

	"github.com/anatolykoptev/go_note/internal/engine"
)

var (
	bracketNoteRe = regexp.MustCompile(`\[.*?\]`)
	parenNoteRe   = regexp.MustCompile(`\(.*?\)`)
)

// Preprocess strips [음악]-style and (웃음)-style annotations from each segment,
// collapses whitespace and drops segments left empty. Order is preserved.
func Preprocess(segs []engine.TimedTextSegment) []engine.TimedTextSegment {
	out := make([]engine.TimedTextSegment, 0, len(segs))
	for _, s := range segs {
		text := bracketNoteRe.ReplaceAllString(s.Text, "")
		text = parenNoteRe.ReplaceAllString(text, "")
		text = engine.CollapseWhitespace(text)
		if text == "" {
			continue
		}
		s.Text = text
		out = append(out, s)
	}
	return out
}
