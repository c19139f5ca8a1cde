package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// TextGenerator is the text-generation capability used by both AI stages.
// Errors wrap ErrUpstreamUnavailable, ErrEmptyUpstreamResponse or ErrSafetyBlocked.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions tunes a single generation call. Zero values use the generator's defaults.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// withDefaults fills zero fields from the engine config, then from fixed defaults.
func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.Temperature <= 0 {
		o.Temperature = cfg.LLMTemperature
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = cfg.LLMMaxTokens
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1024
	}
	return o
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the span from the first '{' to the last '}' in text.
// Surrounding prose and code fences are ignored.
func ExtractJSONObject(text string) (string, error) {
	text = stripFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response: %w", ErrMalformedOutput)
	}
	return text[start : end+1], nil
}

// DecodeJSONObject extracts the JSON object embedded in text and decodes it into T.
func DecodeJSONObject[T any](text string) (T, error) {
	var out T
	span, err := ExtractJSONObject(text)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return out, fmt.Errorf("decode %q: %v: %w", TruncateRunes(span, 80, "..."), err, ErrMalformedOutput)
	}
	return out, nil
}

// GenerateJSON calls gen and decodes the JSON object in its response into T.
// Every failure is counted; malformed responses wrap ErrMalformedOutput.
func GenerateJSON[T any](ctx context.Context, gen TextGenerator, prompt string, opts GenerateOptions) (T, error) {
	raw, err := gen.Generate(ctx, prompt, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := DecodeJSONObject[T](raw)
	if err != nil {
		recordLLMError(err)
	}
	return out, err
}

// LLMGenerator adapts the OpenAI-compatible go-kit client to TextGenerator.
type LLMGenerator struct {
	client  *llm.Client
	limiter *rate.Limiter
}

// NewLLMGenerator wraps client. limiter may be nil.
func NewLLMGenerator(client *llm.Client, limiter *rate.Limiter) *LLMGenerator {
	return &LLMGenerator{client: client, limiter: limiter}
}

// Generate sends prompt as a single user message.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("llm rate limit: %v: %w", err, ErrUpstreamUnavailable)
		}
	}

	opts = opts.withDefaults()
	metrics.LLMCalls.Add(1)
	resp, err := g.client.Complete(ctx, "", prompt,
		llm.WithChatTemperature(opts.Temperature),
		llm.WithChatMaxTokens(opts.MaxTokens),
	)
	if err != nil {
		err = fmt.Errorf("llm complete: %v: %w", err, ErrUpstreamUnavailable)
		recordLLMError(err)
		return "", err
	}
	resp = stripFences(resp)
	if resp == "" {
		err = fmt.Errorf("llm complete: %w", ErrEmptyUpstreamResponse)
		recordLLMError(err)
		return "", err
	}
	return resp, nil
}

// NewLimiter returns a limiter allowing rps requests per second, or nil when rps <= 0.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
