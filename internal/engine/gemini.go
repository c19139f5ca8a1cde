package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Gemini generateContent wire types.

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

var geminiSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// GeminiClient calls the Gemini generateContent endpoint directly so that
// safety blocks can be told apart from transport failures.
type GeminiClient struct {
	base    string
	model   string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	retry   RetryConfig
}

// NewGeminiClient creates a client. Empty base/model use the defaults; limiter may be nil.
func NewGeminiClient(base, model, apiKey string, client *http.Client, limiter *rate.Limiter) *GeminiClient {
	if base == "" {
		base = DefaultGeminiAPIBase
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiClient{
		base:    strings.TrimRight(base, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  client,
		limiter: limiter,
		retry:   DefaultRetryConfig.For("gemini"),
	}
}

// WithAPIKey returns a copy using apiKey. The rate limiter is shared.
func (g *GeminiClient) WithAPIKey(apiKey string) *GeminiClient {
	cp := *g
	cp.apiKey = apiKey
	return &cp
}

// HasKey reports whether an API key is configured.
func (g *GeminiClient) HasKey() bool {
	return g != nil && g.apiKey != ""
}

// Generate sends prompt and returns the first candidate's text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	text, err := g.generate(ctx, prompt, opts)
	if err != nil {
		recordLLMError(err)
	}
	return text, err
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini api key: %w", ErrMissingParameter)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini rate limit: %v: %w", err, ErrUpstreamUnavailable)
		}
	}

	opts = opts.withDefaults()
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
			TopK:            40,
			TopP:            0.95,
		},
		SafetySettings: geminiSafetySettings,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.base, g.model, url.QueryEscape(g.apiKey))

	metrics.LLMCalls.Add(1)
	resp, err := RetryHTTP(ctx, g.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", UserAgentBot)
		return g.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %v: %w", err, ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("gemini HTTP %d: %s: %w", resp.StatusCode, snippet, ErrUpstreamUnavailable)
	}

	var out geminiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4*1024*1024)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %v: %w", err, ErrUpstreamUnavailable)
	}
	return geminiText(out)
}

// geminiText classifies a decoded response and returns the first candidate's text.
func geminiText(out geminiResponse) (string, error) {
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked (%s): %w", out.PromptFeedback.BlockReason, ErrSafetyBlocked)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates: %w", ErrEmptyUpstreamResponse)
	}
	first := out.Candidates[0]
	if first.FinishReason == "SAFETY" {
		return "", fmt.Errorf("gemini: finishReason SAFETY: %w", ErrSafetyBlocked)
	}
	var sb strings.Builder
	for _, p := range first.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini: empty candidate text: %w", ErrEmptyUpstreamResponse)
	}
	return text, nil
}
