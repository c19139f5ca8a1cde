package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGen replays canned responses in order; past the end it repeats the last one.
type fakeGen struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (g *fakeGen) Generate(_ context.Context, prompt string, _ engine.GenerateOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	var err error
	if len(g.errs) > 0 {
		err = g.errs[min(i, len(g.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	if len(g.responses) == 0 {
		return "", engine.ErrEmptyUpstreamResponse
	}
	return g.responses[min(i, len(g.responses)-1)], nil
}

func failingGen(err error) *fakeGen { return &fakeGen{errs: []error{err}} }

func TestPreprocess(t *testing.T) {
	in := []engine.TimedTextSegment{
		{Text: "[음악]", Start: 0},
		{Text: "안녕하세요 (웃음) 여러분", Start: 1},
		{Text: "  [박수]  (환호) ", Start: 2},
		{Text: "오늘의  주제는   AI", Start: 3},
	}
	out := Preprocess(in)
	require.Len(t, out, 2)
	assert.Equal(t, "안녕하세요 여러분", out[0].Text)
	assert.Equal(t, 1.0, out[0].Start)
	assert.Equal(t, "오늘의 주제는 AI", out[1].Text)
	assert.Equal(t, "[음악]", in[0].Text, "input must not be modified")
}

func evenSegments(totalSeconds, step int) []engine.TimedTextSegment {
	var segs []engine.TimedTextSegment
	for s := 0; s < totalSeconds; s += step {
		segs = append(segs, engine.TimedTextSegment{
			Text:     fmt.Sprintf("%d초 지점에서 설명하는 핵심 내용입니다. 짧음", s),
			Start:    float64(s),
			Duration: float64(step),
		})
	}
	return segs
}

func TestSegmentEmpty(t *testing.T) {
	w := Segment(nil, 754, 300)
	require.Len(t, w, 1)
	assert.Equal(t, 0.0, w[0].Start)
	assert.Equal(t, 754.0, w[0].End)
	assert.Equal(t, "0:00-12:34", WindowRange(w[0]))
}

func TestSegmentTwelveMinutes(t *testing.T) {
	w := Segment(evenSegments(720, 10), 720, 300)
	require.Len(t, w, 3)
	assert.Equal(t, "0:00-5:10", WindowRange(w[0]))
	assert.Equal(t, "5:10-10:20", WindowRange(w[1]))
	assert.Equal(t, "10:20-12:00", WindowRange(w[2]))
}

func TestSegmentCoversTimeline(t *testing.T) {
	cases := []struct {
		name  string
		segs  []engine.TimedTextSegment
		total float64
	}{
		{"even", evenSegments(3600, 7), 3600},
		{"sparse", []engine.TimedTextSegment{{Text: "a", Start: 5}, {Text: "b", Start: 900}, {Text: "c", Start: 901}}, 1000},
		{"late start", []engine.TimedTextSegment{{Text: "a", Start: 400}, {Text: "b", Start: 1000}}, 1200},
		{"total shorter than captions", evenSegments(600, 30), 100},
		{"unknown total", evenSegments(650, 50), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			windows := Segment(tc.segs, tc.total, 300)
			require.NotEmpty(t, windows)
			assert.Equal(t, 0.0, windows[0].Start)
			count := 0
			for i, w := range windows {
				assert.LessOrEqual(t, w.Start, w.End, "window %d", i)
				if i > 0 {
					assert.Equal(t, windows[i-1].End, w.Start, "window %d must start where %d ends", i, i-1)
				}
				count += len(w.Segments)
			}
			assert.Equal(t, len(tc.segs), count, "every segment lands in exactly one window")
			if tc.total > 0 && tc.total >= windows[len(windows)-1].Start {
				assert.Equal(t, tc.total, windows[len(windows)-1].End)
			}
		})
	}
}

func TestKeyPointsFromText(t *testing.T) {
	x := NewKeyPointExtractor(DefaultOptions())
	long := strings.Repeat("가", 250)
	w := engine.TimeWindow{Start: 0, End: 60, Segments: []engine.TimedTextSegment{
		{Text: "짧다. 이 문장은 충분히 길어서 핵심 포인트가 됩니다!"},
		{Text: long + ". 두 번째로 선택될 충분히 긴 문장입니다? 세 번째 핵심 포인트 후보 문장입니다."},
		{Text: "네 번째 문장은 길지만 선택되지 않아야 합니다."},
	}}

	ps := x.Extract(w, 0, 1, nil)
	assert.Equal(t, "0:00-1:00", ps.TimeRange)
	assert.Equal(t, []string{
		"이 문장은 충분히 길어서 핵심 포인트가 됩니다",
		"두 번째로 선택될 충분히 긴 문장입니다",
		"세 번째 핵심 포인트 후보 문장입니다",
	}, ps.KeyPoints)
	assert.True(t, strings.HasPrefix(ps.CleanedText, "짧다. 이 문장은"))
	assert.Nil(t, ps.Hint)
}

func TestKeyPointsBounds(t *testing.T) {
	x := NewKeyPointExtractor(DefaultOptions())
	inputs := []string{
		strings.Repeat("아주 긴 문장을 계속 이어서 씁니다 ", 40) + ".",
		"a. bb. ccc. 정확히 열 글자 입니다. 열한 글자의 문장입니다요.",
		strings.Repeat("충분히 긴 한국어 문장입니다. ", 10),
		"",
	}
	fb := &engine.FallbackMetadata{Title: strings.Repeat("제목", 120), Description: strings.Repeat("설명", 200), Topics: []string{"개발/코딩"}}
	for i, in := range inputs {
		for _, f := range []*engine.FallbackMetadata{nil, fb} {
			ps := x.Extract(engine.TimeWindow{Segments: []engine.TimedTextSegment{{Text: in}}}, 0, 2, f)
			assert.LessOrEqual(t, len(ps.KeyPoints), 3, "input %d", i)
			for _, kp := range ps.KeyPoints {
				n := engine.RuneLen(kp)
				assert.True(t, n > 10 && n < 200, "input %d: key point length %d out of bounds: %q", i, n, kp)
			}
		}
	}
}

func TestKeyPointsScenarioB(t *testing.T) {
	fb := engine.DeriveFallback("AI 활용법", "프로그래밍 기초부터 실전까지")
	require.Equal(t, "AI/기술", fb.PrimaryTopic())

	windows := []engine.TimeWindow{{Start: 0, End: 300}, {Start: 300, End: 600}}
	x := NewKeyPointExtractor(DefaultOptions())

	first := x.Extract(windows[0], 0, len(windows), &fb)
	require.NotEmpty(t, first.KeyPoints)
	assert.Contains(t, first.KeyPoints[0], PositionIntro)
	assert.Contains(t, first.KeyPoints[0], "50%")
	assert.Contains(t, first.RawText, "AI 활용법")
	require.NotNil(t, first.Hint)
	assert.Equal(t, "AI/기술", first.Hint.Topic)

	last := x.Extract(windows[1], 1, len(windows), &fb)
	assert.Contains(t, last.KeyPoints[0], PositionClosing)
	assert.Contains(t, last.KeyPoints[0], "100%")
}

func TestKeyPointsGenericTemplateAndPlaceholder(t *testing.T) {
	x := NewKeyPointExtractor(DefaultOptions())
	fb := engine.DeriveFallback("요리 브이로그", "")
	require.Equal(t, engine.DefaultTopic, fb.PrimaryTopic())

	ps := x.Extract(engine.TimeWindow{}, 1, 3, &fb)
	assert.Contains(t, ps.RawText, "요리 브이로그")
	assert.Contains(t, ps.KeyPoints[0], PositionMiddle)
	assert.Contains(t, ps.KeyPoints[0], "67%")

	none := x.Extract(engine.TimeWindow{End: 90}, 0, 1, nil)
	assert.Equal(t, placeholderText, none.RawText)
	assert.Equal(t, placeholderKeyPoints, none.KeyPoints)
	assert.Equal(t, placeholderTitle, none.Hint.Title)
	assert.Equal(t, "0:00-1:30", none.TimeRange)
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		index, total int
		label        string
		percent      int
	}{
		{0, 1, PositionIntro, 100},
		{0, 2, PositionIntro, 50},
		{1, 2, PositionClosing, 100},
		{1, 3, PositionMiddle, 67},
		{2, 3, PositionClosing, 100},
	}
	for _, tt := range tests {
		label, percent := positionOf(tt.index, tt.total)
		assert.Equal(t, tt.label, label, "positionOf(%d, %d)", tt.index, tt.total)
		assert.Equal(t, tt.percent, percent, "positionOf(%d, %d)", tt.index, tt.total)
	}
}

var testSection = engine.ProcessedSection{
	TimeRange:   "0:00-5:00",
	RawText:     "원문 텍스트",
	CleanedText: "원문 텍스트",
	KeyPoints:   []string{"첫 번째 핵심 포인트입니다", "두 번째 핵심 포인트입니다"},
}

func TestSectionAnalyzerSuccess(t *testing.T) {
	gen := &fakeGen{responses: []string{
		"분석 결과는 다음과 같습니다:\n```json\n" +
			`{"title":"AI 도구 소개","summary":"AI 도구를 소개합니다.","concepts":["a","b","c","d"],"actions":["x","y","z"]}` +
			"\n```\n도움이 되셨길 바랍니다.",
	}}
	a := NewSectionAnalyzer(gen, DefaultOptions())
	res := a.Analyze(t.Context(), testSection, 0)

	require.False(t, res.Fallback, "err: %v", res.Err)
	assert.Equal(t, "0:00-5:00", res.Value.TimeRange)
	assert.Equal(t, "AI 도구 소개", res.Value.Title)
	assert.Equal(t, []string{"a", "b", "c"}, res.Value.Concepts)
	assert.Equal(t, []string{"x", "y"}, res.Value.Actions)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "0:00-5:00")
	assert.Contains(t, gen.prompts[0], "첫 번째 핵심 포인트입니다, 두 번째 핵심 포인트입니다")
}

func TestSectionAnalyzerFallback(t *testing.T) {
	tests := []struct {
		name string
		gen  engine.TextGenerator
		kind string
	}{
		{"safety", failingGen(fmt.Errorf("blocked: %w", engine.ErrSafetyBlocked)), "safety_blocked"},
		{"upstream", failingGen(fmt.Errorf("503: %w", engine.ErrUpstreamUnavailable)), "upstream_unavailable"},
		{"no json", &fakeGen{responses: []string{"죄송합니다, 분석할 수 없습니다."}}, "malformed_output"},
		{"broken json", &fakeGen{responses: []string{`{"title": "unterminated`}}, "malformed_output"},
		{"no generator", nil, "missing_parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSectionAnalyzer(tt.gen, DefaultOptions())
			res := a.Analyze(t.Context(), testSection, 2)
			require.True(t, res.Fallback)
			assert.Equal(t, tt.kind, engine.ErrorKind(res.Err))
			assert.Equal(t, "구간 3", res.Value.Title)
			assert.Equal(t, "0:00-5:00", res.Value.TimeRange)
			assert.Equal(t, "첫 번째 핵심 포인트입니다. 두 번째 핵심 포인트입니다", res.Value.Summary)
			assert.Equal(t, []string{"개념1", "개념2"}, res.Value.Concepts)
			assert.Equal(t, []string{"실행1", "실행2"}, res.Value.Actions)
		})
	}
}

func TestSectionAnalyzerFallbackSummaryFromCleanedText(t *testing.T) {
	a := NewSectionAnalyzer(nil, DefaultOptions())
	sec := engine.ProcessedSection{TimeRange: "1:00-2:00", CleanedText: strings.Repeat("내용 ", 150)}
	res := a.Analyze(t.Context(), sec, 0)
	assert.True(t, strings.HasSuffix(res.Value.Summary, "..."))
	assert.LessOrEqual(t, engine.RuneLen(res.Value.Summary), 203)

	empty := a.Analyze(t.Context(), engine.ProcessedSection{TimeRange: "0:00-0:10"}, 0)
	assert.Equal(t, emptySectionSummary, empty.Value.Summary)
}

var testAnalyses = []engine.SectionAnalysis{
	{TimeRange: "0:00-5:10", Title: "도입", Summary: "도입부 요약", Concepts: []string{"개념A"}, Actions: []string{"행동A"}},
	{TimeRange: "5:10-10:20", Title: "본론", Summary: "본론 요약", Concepts: nil, Actions: []string{"행동B"}},
}

var testInfo = engine.VideoInfo{ID: "abcDEF12345", Title: "AI 활용법", ChannelTitle: "채널", Duration: "12:00"}

func TestNoteSynthesizerSuccess(t *testing.T) {
	gen := &fakeGen{responses: []string{`다음은 결과입니다 {"keyInsight":"AI 도구를 업무에 바로 적용할 수 있습니다.",` +
		`"sections":[{"timeRange":"0:00-5:10","title":"AI 도입","content":"내용1","keyConcepts":["k1"],"actionPoints":["a1"]},` +
		`{"title":"AI 심화","content":""}]}`}}
	s := NewNoteSynthesizer(gen)
	res := s.Synthesize(t.Context(), testAnalyses, testInfo)

	require.False(t, res.Fallback, "err: %v", res.Err)
	assert.Equal(t, "AI 도구를 업무에 바로 적용할 수 있습니다.", res.Value.KeyInsight)
	require.Len(t, res.Value.Sections, 2)
	assert.Equal(t, "AI 도입", res.Value.Sections[0].Title)
	second := res.Value.Sections[1]
	assert.Equal(t, "5:10-10:20", second.TimeRange, "blank fields come from the analysis")
	assert.Equal(t, "본론 요약", second.Content)
	assert.Equal(t, []string{}, second.KeyConcepts)
	assert.Equal(t, []string{"행동B"}, second.ActionPoints)
	assert.Contains(t, gen.prompts[0], "AI 활용법")
	assert.Contains(t, gen.prompts[0], "정확히 2개")
}

func TestNoteSynthesizerFallback(t *testing.T) {
	s := NewNoteSynthesizer(failingGen(engine.ErrEmptyUpstreamResponse))
	res := s.Synthesize(t.Context(), testAnalyses, testInfo)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, engine.ErrEmptyUpstreamResponse)
	assert.Equal(t, "AI 활용법에서 유용한 정보를 얻을 수 있습니다.", res.Value.KeyInsight)
	assert.Equal(t, []engine.NoteSection{
		{TimeRange: "0:00-5:10", Title: "도입", Content: "도입부 요약", KeyConcepts: []string{"개념A"}, ActionPoints: []string{"행동A"}},
		{TimeRange: "5:10-10:20", Title: "본론", Content: "본론 요약", KeyConcepts: []string{}, ActionPoints: []string{"행동B"}},
	}, res.Value.Sections)
}

func TestNoteSynthesizerSectionCountMismatch(t *testing.T) {
	gen := &fakeGen{responses: []string{`{"keyInsight":"모델이 만든 인사이트 문장입니다.","sections":[{"title":"하나뿐"}]}`}}
	res := NewNoteSynthesizer(gen).Synthesize(t.Context(), testAnalyses, testInfo)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, engine.ErrMalformedOutput)
	assert.Equal(t, "모델이 만든 인사이트 문장입니다.", res.Value.KeyInsight)
	assert.Len(t, res.Value.Sections, 2)
	assert.Equal(t, "도입", res.Value.Sections[0].Title)
}

func TestValidate(t *testing.T) {
	for _, insight := range []string{"", "짧음", "   ", "123456789"} {
		in := engine.GeneratedNote{Title: "AI 활용법", Duration: "12:00", KeyInsight: insight}
		out, repaired := Validate(in, 10)
		assert.True(t, repaired)
		assert.GreaterOrEqual(t, engine.RuneLen(out.KeyInsight), 10, "insight %q", insight)
		assert.Contains(t, out.KeyInsight, "AI 활용법")
		require.Len(t, out.Sections, 1)
		assert.Equal(t, "0:00-12:00", out.Sections[0].TimeRange)
		assert.Empty(t, in.Sections, "input must not be modified")
	}

	good := engine.GeneratedNote{
		Title:      "t",
		KeyInsight: "충분히 긴 핵심 인사이트 문장입니다.",
		Sections:   []engine.NoteSection{{Title: "s"}},
	}
	out, repaired := Validate(good, 10)
	assert.False(t, repaired)
	assert.Equal(t, good, out)

	noDuration, _ := Validate(engine.GeneratedNote{}, 10)
	assert.Equal(t, "0:00-0:00", noDuration.Sections[0].TimeRange)
}

func TestChanSink(t *testing.T) {
	ch := make(chan ProgressEvent, 1)
	sink := NewChanSink(t.Context(), ch, 0)
	sink.Report(ProgressEvent{Label: "a", Percentage: 10})
	sink.Report(ProgressEvent{Label: "b", Percentage: 20}) // full: dropped
	assert.Equal(t, "a", (<-ch).Label)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	NewChanSink(ctx, make(chan ProgressEvent), 1<<40).Report(ProgressEvent{Label: "c"}) // returns on ctx
}

func TestStageResultHelpers(t *testing.T) {
	ok := succeeded(3)
	assert.False(t, ok.Fallback)
	assert.NoError(t, ok.Err)

	fb := fellBack("x", errors.New("boom"))
	assert.True(t, fb.Fallback)
	assert.Equal(t, "x", fb.Value)
	assert.EqualError(t, fb.Err, "boom")
}
