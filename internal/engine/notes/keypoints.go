package notes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]`)

// KeyPointExtractor reduces a window to text plus a bounded list of key points.
type KeyPointExtractor struct {
	opts Options
}

// NewKeyPointExtractor creates an extractor; zero option fields use the defaults.
func NewKeyPointExtractor(opts Options) *KeyPointExtractor {
	return &KeyPointExtractor{opts: opts.withDefaults()}
}

// Extract processes window index of total. Windows without text are filled from
// the topic templates when fb is set, otherwise from the fixed placeholder.
func (x *KeyPointExtractor) Extract(w engine.TimeWindow, index, total int, fb *engine.FallbackMetadata) engine.ProcessedSection {
	ps := engine.ProcessedSection{TimeRange: WindowRange(w)}

	texts := make([]string, 0, len(w.Segments))
	for _, s := range w.Segments {
		texts = append(texts, s.Text)
	}
	raw := strings.TrimSpace(strings.Join(texts, " "))

	switch {
	case raw != "":
		ps.RawText = raw
		ps.CleanedText, ps.KeyPoints = x.fromText(raw)
	case fb != nil:
		x.fromTemplate(&ps, index, total, fb)
	default:
		ps.RawText = placeholderText
		ps.CleanedText = placeholderText
		ps.KeyPoints = append([]string(nil), placeholderKeyPoints...)
		ps.Hint = &engine.SectionHint{
			Topic:   engine.DefaultTopic,
			Title:   placeholderTitle,
			Summary: placeholderSummary,
		}
	}
	return ps
}

// fromText splits on sentence terminators. cleaned rejoins every non-empty
// fragment; key points are the first fragments within the length bounds.
func (x *KeyPointExtractor) fromText(raw string) (cleaned string, points []string) {
	var fragments []string
	for _, f := range sentenceSplitRe.Split(raw, -1) {
		if f = strings.TrimSpace(f); f != "" {
			fragments = append(fragments, f)
		}
	}
	return strings.Join(fragments, ". "), x.keep(fragments)
}

func (x *KeyPointExtractor) fromTemplate(ps *engine.ProcessedSection, index, total int, fb *engine.FallbackMetadata) {
	label, percent := positionOf(index, total)
	p := templateParams{
		Topic:    fb.PrimaryTopic(),
		Title:    fb.Title,
		Excerpt:  descriptionExcerpt(fb.Description),
		Position: label,
		Percent:  percent,
	}
	tmpl := templateFor(p.Topic)

	paragraph := p.render(tmpl.Paragraph)
	summary := p.render(tmpl.Summary)
	action := p.render(tmpl.Action)

	candidates := []string{
		"[" + label + " · " + strconv.Itoa(percent) + "%] " + summary,
		action,
	}
	if p.Excerpt != "" {
		candidates = append(candidates, "영상 설명: "+p.Excerpt)
	}
	for i, c := range candidates {
		candidates[i] = engine.TruncateRunes(c, x.opts.MaxPointLen-10, "...")
	}

	ps.RawText = paragraph
	ps.CleanedText = paragraph
	ps.KeyPoints = x.keep(candidates)
	ps.Hint = &engine.SectionHint{
		Topic:   p.Topic,
		Title:   p.render(tmpl.Title),
		Summary: summary,
		Action:  action,
	}
}

// keep returns up to MaxKeyPoints entries with length strictly inside (MinPointLen, MaxPointLen).
func (x *KeyPointExtractor) keep(candidates []string) []string {
	points := make([]string, 0, x.opts.MaxKeyPoints)
	for _, c := range candidates {
		if len(points) == x.opts.MaxKeyPoints {
			break
		}
		n := engine.RuneLen(c)
		if n > x.opts.MinPointLen && n < x.opts.MaxPointLen {
			points = append(points, c)
		}
	}
	return points
}
