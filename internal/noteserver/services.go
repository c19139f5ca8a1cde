package noteserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/engine/notes"
	"github.com/anatolykoptev/go_note/internal/engine/sources"
)

// Services holds the long-lived upstream clients shared by every request.
// Per-request credentials produce copies; the rate limiter stays shared.
type Services struct {
	Gemini   *engine.GeminiClient
	LLM      *engine.LLMGenerator // nil when no OpenAI-compatible client is configured
	Resolver *sources.VideoInfoResolver
	Captions *sources.CaptionExtractor
	Options  notes.Options
}

// NewServices builds the clients from the engine configuration.
func NewServices(c *engine.Config) *Services {
	limiter := engine.NewLimiter(c.LLMRequestsPerSecond)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	fetchClient := httpClient
	if c.FetchTimeout > 0 {
		cp := *httpClient
		cp.Timeout = c.FetchTimeout
		fetchClient = &cp
	}

	s := &Services{
		Gemini:   engine.NewGeminiClient(c.GeminiAPIBase, c.GeminiModel, c.GeminiAPIKey, httpClient, limiter),
		Resolver: sources.NewVideoInfoResolver(fetchClient, c.YouTubeDataAPIBase, c.YouTubeAPIKey),
		Captions: sources.NewCaptionExtractor(fetchClient, c.YouTubeBaseURL, c.CaptionLangs),
		Options: notes.Options{
			WindowSeconds: float64(c.WindowSeconds),
			MaxKeyPoints:  c.MaxKeyPoints,
			RunTimeout:    c.RunTimeout,
		},
	}
	if c.LLMClient != nil && c.LLMAPIKey != "" {
		s.LLM = engine.NewLLMGenerator(c.LLMClient, limiter)
	}
	return s
}

// Generator picks the text-generation capability for a request: a per-request
// Gemini key, then the server's Gemini key, then the OpenAI-compatible client.
func (s *Services) Generator(geminiKey string) (engine.TextGenerator, error) {
	if key := strings.TrimSpace(geminiKey); key != "" {
		return s.Gemini.WithAPIKey(key), nil
	}
	if s.Gemini.HasKey() {
		return s.Gemini, nil
	}
	if s.LLM != nil {
		return s.LLM, nil
	}
	return nil, fmt.Errorf("gemini_api_key is required: %w", engine.ErrMissingParameter)
}

// Metadata returns the resolver for a request, or nil when no API key is
// available; the run then uses page-scraped metadata.
func (s *Services) Metadata(youtubeKey string) notes.MetadataSource {
	r := s.Resolver
	if key := strings.TrimSpace(youtubeKey); key != "" {
		r = r.WithAPIKey(key)
	}
	if !r.HasKey() {
		return nil
	}
	return r
}

// Orchestrator assembles a pipeline for one request.
func (s *Services) Orchestrator(geminiKey, youtubeKey string) (*notes.Orchestrator, error) {
	gen, err := s.Generator(geminiKey)
	if err != nil {
		return nil, err
	}
	return notes.NewOrchestrator(notes.Deps{
		Captions:  s.Captions,
		Metadata:  s.Metadata(youtubeKey),
		Generator: gen,
		Options:   s.Options,
	}), nil
}

// LogConfig logs which upstream capabilities are available.
func (s *Services) LogConfig() {
	slog.Info("note services ready",
		slog.Bool("gemini_key", s.Gemini.HasKey()),
		slog.Bool("llm_client", s.LLM != nil),
		slog.Bool("youtube_key", s.Resolver.HasKey()),
		slog.Float64("window_seconds", s.Options.WindowSeconds),
		slog.Duration("run_timeout", s.runTimeout()),
	)
}

func (s *Services) runTimeout() time.Duration {
	if s.Options.RunTimeout > 0 {
		return s.Options.RunTimeout
	}
	return notes.DefaultOptions().RunTimeout
}
