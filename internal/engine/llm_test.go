package engine

import (
	"context"
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare object", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", raw: "결과입니다: {\"a\":{\"b\":2}} 감사합니다", want: `{"a":{"b":2}}`},
		{name: "empty", raw: "", wantErr: true},
		{name: "no braces", raw: "분석할 수 없습니다", wantErr: true},
		{name: "reversed braces", raw: "} oops {", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedOutput) {
					t.Fatalf("err = %v, want ErrMalformedOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSONObject(t *testing.T) {
	type payload struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	got, err := DecodeJSONObject[payload]("```\n{\"title\":\"제목\",\"tags\":[\"a\",\"b\"]}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "제목" || len(got.Tags) != 2 {
		t.Errorf("got %+v", got)
	}

	if _, err := DecodeJSONObject[payload](`{"title": 5}`); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("type mismatch: err = %v, want ErrMalformedOutput", err)
	}
}

type stubGen struct {
	text string
	err  error
	opts GenerateOptions
}

func (s *stubGen) Generate(_ context.Context, _ string, opts GenerateOptions) (string, error) {
	s.opts = opts
	return s.text, s.err
}

func TestGenerateJSON(t *testing.T) {
	type out struct {
		KeyInsight string `json:"keyInsight"`
	}

	gen := &stubGen{text: `다음과 같습니다 {"keyInsight":"핵심"}`}
	got, err := GenerateJSON[out](t.Context(), gen, "p", GenerateOptions{Temperature: 0.7, MaxTokens: 2048})
	if err != nil || got.KeyInsight != "핵심" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if gen.opts.MaxTokens != 2048 {
		t.Errorf("options not forwarded: %+v", gen.opts)
	}

	_, err = GenerateJSON[out](t.Context(), &stubGen{err: ErrSafetyBlocked}, "p", GenerateOptions{})
	if !errors.Is(err, ErrSafetyBlocked) {
		t.Errorf("err = %v, want ErrSafetyBlocked", err)
	}

	_, err = GenerateJSON[out](t.Context(), &stubGen{text: "JSON 없음"}, "p", GenerateOptions{})
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("err = %v, want ErrMalformedOutput", err)
	}
}

func TestGenerateOptionsDefaults(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })

	cfg = Config{}
	got := GenerateOptions{}.withDefaults()
	if got.Temperature != 0.7 || got.MaxTokens != 1024 {
		t.Errorf("fixed defaults = %+v", got)
	}

	cfg = Config{LLMTemperature: 0.2, LLMMaxTokens: 512}
	got = GenerateOptions{MaxTokens: 2048}.withDefaults()
	if got.Temperature != 0.2 || got.MaxTokens != 2048 {
		t.Errorf("config defaults = %+v", got)
	}
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0) != nil {
		t.Error("NewLimiter(0) should be nil")
	}
	if l := NewLimiter(2); l == nil || l.Limit() != 2 {
		t.Errorf("NewLimiter(2) = %v", l)
	}
}
