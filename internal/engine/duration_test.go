package engine

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestFormatISODuration(t *testing.T) {
	tests := map[string]string{
		"PT1H2M3S":  "1:02:03",
		"PT5M":      "5:00",
		"PT45S":     "0:45",
		"PT10H":     "10:00:00",
		"PT0S":      "0:00",
		"P1D":       "0:00",
		"":          "0:00",
		"garbage":   "0:00",
		"PT12M34S":  "12:34",
		"PT1H0M59S": "1:00:59",
	}
	for in, want := range tests {
		if got := FormatISODuration(in); got != want {
			t.Errorf("FormatISODuration(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseISODuration(t *testing.T) {
	if s, ok := ParseISODuration("PT1H2M3S"); !ok || s != 3723 {
		t.Errorf("ParseISODuration = %d, %v", s, ok)
	}
	if _, ok := ParseISODuration("1:02:03"); ok {
		t.Error("clock form must not parse")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{310, "5:10"},
		{3725, "62:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatTimeRange(300, 620); got != "5:00-10:20" {
		t.Errorf("FormatTimeRange = %q", got)
	}
}

func TestEstimateTopics(t *testing.T) {
	tests := []struct {
		title, desc string
		want        []string
	}{
		{"AI 활용법", "프로그래밍", []string{"AI/기술", "개발/코딩", "생산성/도구"}},
		{"주식 시장 분석", "", []string{"투자/경제"}},
		{"요리 브이로그", "", []string{DefaultTopic}},
		{"Claude 튜토리얼", "", []string{"AI/기술", "교육/학습"}},
	}
	for _, tt := range tests {
		if got := EstimateTopics(tt.title, tt.desc); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EstimateTopics(%q, %q) = %v, want %v", tt.title, tt.desc, got, tt.want)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("🚀 GPT 강의 만들기 🎉🔥✨", "")
	want := []string{"gpt", "강의", "만들기", "🚀", "🎉", "🔥"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}

	long := ExtractKeywords("ai claude gpt mcp 인공지능 개발 프로그래밍 코딩 투자 분석 자동화 강의", "")
	if len(long) != maxFallbackKeys {
		t.Errorf("len = %d, want %d", len(long), maxFallbackKeys)
	}
}

func TestDeriveFallback(t *testing.T) {
	fb := DeriveFallback("AI 활용법", "프로그래밍 기초")
	if fb.PrimaryTopic() != "AI/기술" {
		t.Errorf("PrimaryTopic = %q", fb.PrimaryTopic())
	}
	var none *FallbackMetadata
	if none.PrimaryTopic() != DefaultTopic {
		t.Error("nil PrimaryTopic must be DefaultTopic")
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("x: %w", ErrMissingParameter), "missing_parameter"},
		{fmt.Errorf("x: %w", ErrSafetyBlocked), "safety_blocked"},
		{fmt.Errorf("x: %w", ErrEmptyUpstreamResponse), "empty_upstream_response"},
		{fmt.Errorf("x: %w", ErrMalformedOutput), "malformed_output"},
		{fmt.Errorf("x: %w", ErrNoCaptionsFound), "no_captions_found"},
		{&httpStatusError{StatusCode: 503}, "upstream_unavailable"},
		{errors.New("other"), "unknown"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
