package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Data API v3 /videos response, only the parts the resolver reads.
type ytVideosResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Description  string `json:"description"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"` // ISO-8601, e.g. PT1H2M3S
		} `json:"contentDetails"`
	} `json:"items"`
}

// VideoInfoResolver looks up video metadata through the YouTube Data API.
type VideoInfoResolver struct {
	client *http.Client
	base   string
	apiKey string
	retry  engine.RetryConfig
}

// NewVideoInfoResolver creates a resolver. Empty base uses the public Data API endpoint.
func NewVideoInfoResolver(client *http.Client, base, apiKey string) *VideoInfoResolver {
	if client == nil {
		client = http.DefaultClient
	}
	if base == "" {
		base = engine.DefaultYouTubeDataAPIBase
	}
	return &VideoInfoResolver{
		client: client,
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		retry:  engine.DefaultRetryConfig.For("youtube-data-api"),
	}
}

// WithAPIKey returns a copy using apiKey.
func (r *VideoInfoResolver) WithAPIKey(apiKey string) *VideoInfoResolver {
	cp := *r
	cp.apiKey = apiKey
	return &cp
}

// HasKey reports whether an API key is configured.
func (r *VideoInfoResolver) HasKey() bool {
	return r != nil && r.apiKey != ""
}

// Resolve returns title, channel, duration and description for videoID.
func (r *VideoInfoResolver) Resolve(ctx context.Context, videoID string) (engine.VideoInfo, error) {
	if videoID == "" {
		return engine.VideoInfo{}, fmt.Errorf("video info: video id: %w", engine.ErrMissingParameter)
	}
	if r.apiKey == "" {
		return engine.VideoInfo{}, fmt.Errorf("video info: youtube api key: %w", engine.ErrMissingParameter)
	}
	engine.IncrVideoInfoRequests()

	key := engine.CacheKey(engine.CacheVideoInfo, videoID)
	if cached, ok := engine.CacheLoadJSON[engine.VideoInfo](ctx, key); ok {
		return cached, nil
	}

	info, err := r.fetch(ctx, videoID)
	if err != nil {
		engine.IncrVideoInfoErrors()
		return engine.VideoInfo{}, err
	}
	engine.CacheStoreJSON(ctx, key, info)
	return info, nil
}

func (r *VideoInfoResolver) fetch(ctx context.Context, videoID string) (engine.VideoInfo, error) {
	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {videoID},
		"key":  {r.apiKey},
	}
	endpoint := r.base + "/videos?" + params.Encode()

	resp, err := engine.RetryHTTP(ctx, r.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/json")
		return r.client.Do(req)
	})
	if err != nil {
		return engine.VideoInfo{}, fmt.Errorf("youtube data api: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return engine.VideoInfo{}, fmt.Errorf("youtube data api HTTP %d: %w", resp.StatusCode, engine.ErrUpstreamUnavailable)
	}

	var out ytVideosResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1024*1024)).Decode(&out); err != nil {
		return engine.VideoInfo{}, fmt.Errorf("decode youtube data api: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	if len(out.Items) == 0 {
		return engine.VideoInfo{}, fmt.Errorf("video %s not found: %w", videoID, engine.ErrEmptyUpstreamResponse)
	}

	item := out.Items[0]
	seconds, _ := engine.ParseISODuration(item.ContentDetails.Duration)
	return engine.VideoInfo{
		ID:              videoID,
		Title:           item.Snippet.Title,
		ChannelTitle:    item.Snippet.ChannelTitle,
		Duration:        engine.FormatISODuration(item.ContentDetails.Duration),
		DurationSeconds: seconds,
		Description:     item.Snippet.Description,
		PublishedAt:     item.Snippet.PublishedAt,
	}, nil
}
