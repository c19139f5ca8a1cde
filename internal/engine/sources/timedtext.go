package sources

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// rawCue is one <text> element before cleanup.
type rawCue struct {
	start string
	dur   string
	text  string
}

// cueParser is one strategy for reading timed-text payloads.
// Strategies are independent; an empty result means "try the next one".
type cueParser interface {
	Name() string
	Parse(payload string) []rawCue
}

// cueParsers are tried in order until one yields at least one cue.
var cueParsers = []cueParser{
	strictCueParser{},
	cdataCueParser{},
	permissiveCueParser{},
}

var (
	strictCueRe     = regexp.MustCompile(`<text start="([^"]*)" dur="([^"]*)"[^>]*>([^<]*)</text>`)
	cdataCueRe      = regexp.MustCompile(`(?s)<text start="([^"]*)" dur="([^"]*)"[^>]*><!\[CDATA\[(.*?)\]\]></text>`)
	permissiveCueRe = regexp.MustCompile(`(?s)<text\b([^>]*)>(.*?)</text>`)
	startAttrRe     = regexp.MustCompile(`\bstart\s*=\s*["']([^"']*)["']`)
	durAttrRe       = regexp.MustCompile(`\bdur\s*=\s*["']([^"']*)["']`)
)

// strictCueParser matches start then dur with plain inline text.
type strictCueParser struct{}

func (strictCueParser) Name() string { return "strict" }

func (strictCueParser) Parse(payload string) []rawCue {
	return matchOrdered(strictCueRe, payload)
}

// cdataCueParser is strictCueParser with CDATA-wrapped text.
type cdataCueParser struct{}

func (cdataCueParser) Name() string { return "cdata" }

func (cdataCueParser) Parse(payload string) []rawCue {
	return matchOrdered(cdataCueRe, payload)
}

func matchOrdered(re *regexp.Regexp, payload string) []rawCue {
	var cues []rawCue
	for _, m := range re.FindAllStringSubmatch(payload, -1) {
		cues = append(cues, rawCue{start: m[1], dur: m[2], text: m[3]})
	}
	return cues
}

// permissiveCueParser accepts attributes in any order, single or double quoted,
// with nested markup inside the element. A cue without start is skipped.
type permissiveCueParser struct{}

func (permissiveCueParser) Name() string { return "permissive" }

func (permissiveCueParser) Parse(payload string) []rawCue {
	var cues []rawCue
	for _, m := range permissiveCueRe.FindAllStringSubmatch(payload, -1) {
		attrs := m[1]
		start := startAttrRe.FindStringSubmatch(attrs)
		if start == nil {
			continue
		}
		cue := rawCue{start: start[1], text: engine.CleanHTML(m[2])}
		if dur := durAttrRe.FindStringSubmatch(attrs); dur != nil {
			cue.dur = dur[1]
		}
		cues = append(cues, cue)
	}
	return cues
}

// ParseTimedText runs the parser cascade over payload and returns cleaned segments
// in source order, plus the name of the strategy that matched ("" when none did).
func ParseTimedText(payload string) ([]engine.TimedTextSegment, string) {
	for _, p := range cueParsers {
		cues := p.Parse(payload)
		if len(cues) == 0 {
			continue
		}
		return cuesToSegments(cues), p.Name()
	}
	return nil, ""
}

func cuesToSegments(cues []rawCue) []engine.TimedTextSegment {
	segs := make([]engine.TimedTextSegment, 0, len(cues))
	for _, c := range cues {
		text := CleanCaptionText(c.text)
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(c.start), 64)
		if err != nil {
			continue
		}
		if start < 0 {
			start = 0
		}
		dur, _ := strconv.ParseFloat(strings.TrimSpace(c.dur), 64)
		if dur < 0 {
			dur = 0
		}
		segs = append(segs, engine.TimedTextSegment{Text: text, Start: start, Duration: dur})
	}
	return segs
}

// entityReplacer decodes the fixed entity table in a single pass, so "&amp;lt;" becomes "&lt;"
// rather than "<".
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// DecodeEntities decodes &amp; &lt; &gt; &quot; &#39; &nbsp;. Other entities pass through.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// CleanCaptionText decodes entities, turns escaped newlines into spaces and collapses whitespace.
func CleanCaptionText(s string) string {
	s = DecodeEntities(s)
	s = strings.ReplaceAll(s, `\n`, " ")
	return engine.CollapseWhitespace(s)
}
