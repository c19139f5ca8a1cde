package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	GeminiAPIKey         string
	GeminiAPIBase        string
	GeminiModel          string
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string
	LLMTemperature       float64
	LLMMaxTokens         int
	LLMRequestsPerSecond float64
	YouTubeAPIKey        string
	YouTubeBaseURL       string // watch page + timedtext host
	YouTubeDataAPIBase   string
	CaptionLangs         []string
	FetchTimeout         time.Duration
	RunTimeout           time.Duration
	WindowSeconds        int
	MaxKeyPoints         int
	HTTPClient           *http.Client
	LLMClient            *llm.Client // nil = OpenAI-compatible generator disabled
}

// Default upstream endpoints.
const (
	DefaultGeminiAPIBase      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultYouTubeBaseURL     = "https://www.youtube.com"
	DefaultYouTubeDataAPIBase = "https://www.googleapis.com/youtube/v3"
)

var cfg = Config{
	GeminiAPIBase:      DefaultGeminiAPIBase,
	GeminiModel:        DefaultGeminiModel,
	YouTubeBaseURL:     DefaultYouTubeBaseURL,
	YouTubeDataAPIBase: DefaultYouTubeDataAPIBase,
	CaptionLangs:       []string{"ko", "ko-KR"},
	HTTPClient:         http.DefaultClient,
}

// Cfg exposes the engine configuration for sub-packages (notes, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued endpoints and the HTTP client keep their defaults.
func Init(c Config) {
	if c.GeminiAPIBase == "" {
		c.GeminiAPIBase = DefaultGeminiAPIBase
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = DefaultYouTubeBaseURL
	}
	if c.YouTubeDataAPIBase == "" {
		c.YouTubeDataAPIBase = DefaultYouTubeDataAPIBase
	}
	if len(c.CaptionLangs) == 0 {
		c.CaptionLangs = []string{"ko", "ko-KR"}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	cfg = c
	Cfg = &cfg
}
