package noteserver

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go_note/internal/engine"
)

// LoadConfig reads the engine configuration from the environment.
// Shared by the MCP server and the notegen CLI.
func LoadConfig() engine.Config {
	c := engine.Config{
		GeminiAPIKey:         env.Str("GEMINI_API_KEY", ""),
		GeminiAPIBase:        env.Str("GEMINI_API_BASE", engine.DefaultGeminiAPIBase),
		GeminiModel:          env.Str("GEMINI_MODEL", engine.DefaultGeminiModel),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 2048),
		LLMRequestsPerSecond: env.Float("LLM_RPS", 1),
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		YouTubeBaseURL:       env.Str("YOUTUBE_BASE_URL", engine.DefaultYouTubeBaseURL),
		YouTubeDataAPIBase:   env.Str("YOUTUBE_DATA_API_BASE", engine.DefaultYouTubeDataAPIBase),
		CaptionLangs:         env.List("CAPTION_LANGS", "ko,ko-KR"),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		RunTimeout:           env.Duration("RUN_TIMEOUT", 5*time.Minute),
		WindowSeconds:        env.Int("WINDOW_SECONDS", 300),
		MaxKeyPoints:         env.Int("MAX_KEY_POINTS", 3),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
	}
	return c
}

// LoadCacheConfig reads the upstream cache settings from the environment.
func LoadCacheConfig() engine.CacheConfig {
	return engine.CacheConfig{
		RedisURL: env.Str("REDIS_URL", ""),
		TTL:      env.Duration("CACHE_TTL", 15*time.Minute),
		KindTTL: map[engine.CacheKind]time.Duration{
			engine.CacheCaptions:  env.Duration("CACHE_CAPTIONS_TTL", time.Hour),
			engine.CacheVideoInfo: env.Duration("CACHE_VIDEOINFO_TTL", 0),
		},
		MaxEntries: env.Int("CACHE_MAX_ENTRIES", 1000),
	}
}
