package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// User-facing messages for the metadata-only branches.
const (
	msgPageUnavailable = "YouTube 페이지를 불러올 수 없어 자막을 사용할 수 없습니다."
	msgNoTracks        = "자막을 사용할 수 없지만 메타데이터 기반으로 고품질 노트를 생성할 수 있습니다."
	msgNoTrackURL      = "자막 URL을 찾을 수 없지만 메타데이터 기반으로 고품질 노트를 생성할 수 있습니다."
	msgParseFailed     = "자막 처리에 실패했지만 메타데이터 기반으로 고품질 노트를 생성할 수 있습니다."
)

const (
	timedTextLimit  = 2 * 1024 * 1024
	unknownLanguage = "auto"
)

// CaptionExtractor retrieves and parses the caption track of a video.
type CaptionExtractor struct {
	client  *http.Client
	baseURL string
	langs   []string
	retry   engine.RetryConfig
}

// NewCaptionExtractor creates an extractor. Empty baseURL and langs use the engine defaults.
func NewCaptionExtractor(client *http.Client, baseURL string, langs []string) *CaptionExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = engine.DefaultYouTubeBaseURL
	}
	if len(langs) == 0 {
		langs = []string{"ko", "ko-KR"}
	}
	return &CaptionExtractor{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		langs:   langs,
		retry:   engine.DefaultRetryConfig.For("youtube"),
	}
}

// Extract returns the video's timed segments. Zero segments is a normal outcome:
// Fallback is then built from the watch page whenever the page could be read.
// The only error is a missing video id.
func (e *CaptionExtractor) Extract(ctx context.Context, videoID string) (engine.CaptionResult, error) {
	if strings.TrimSpace(videoID) == "" {
		return engine.CaptionResult{}, fmt.Errorf("caption extract: video id: %w", engine.ErrMissingParameter)
	}
	engine.IncrCaptionRequests()

	key := engine.CacheKey(engine.CacheCaptions, videoID, strings.Join(e.langs, ","))
	if cached, ok := engine.CacheLoadJSON[engine.CaptionResult](ctx, key); ok {
		return cached, nil
	}

	page, err := fetchWatchPage(ctx, e.client, e.baseURL, videoID, e.retry)
	if err != nil {
		slog.Warn("captions: watch page unavailable",
			slog.String("video", videoID), slog.String("kind", engine.ErrorKind(err)), slog.Any("error", err))
		engine.IncrCaptionFallbacks()
		return engine.CaptionResult{Message: msgPageUnavailable}, nil
	}

	md := scrapePageMetadata(page)
	video := md.toVideoInfo(videoID)

	segs, lang, msg, err := e.captionsFromPage(ctx, videoID, page)
	if err != nil {
		slog.Warn("captions: falling back to page metadata",
			slog.String("video", videoID), slog.String("kind", engine.ErrorKind(err)), slog.Any("error", err))
		engine.IncrCaptionFallbacks()
		return engine.CaptionResult{
			Language: lang,
			Fallback: md.toFallback(),
			Video:    &video,
			Message:  msg,
		}, nil
	}

	res := engine.CaptionResult{Segments: segs, Language: lang, Video: &video}
	engine.CacheStoreJSON(ctx, key, res)
	return res, nil
}

// captionsFromPage runs track discovery, selection, payload fetch and parsing.
// Every failure is reported with the message for its branch.
func (e *CaptionExtractor) captionsFromPage(ctx context.Context, videoID string, page []byte) ([]engine.TimedTextSegment, string, string, error) {
	tracks, marker := findCaptionTracks(page)
	if len(tracks) == 0 {
		var err error
		tracks, err = fetchInnertubeTracks(ctx, e.client, e.baseURL, videoID, e.retry)
		if err != nil {
			return nil, "", msgNoTracks, fmt.Errorf("no caption track list: %w", err)
		}
		marker = "innertube"
	}

	track := pickTrack(tracks, e.langs)
	lang := track.LanguageCode
	if lang == "" {
		lang = unknownLanguage
	}
	slog.Debug("captions: track selected",
		slog.String("marker", marker), slog.String("lang", lang), slog.String("kind", track.Kind),
		slog.Int("tracks", len(tracks)))

	if track.BaseURL == "" {
		return nil, lang, msgNoTrackURL, fmt.Errorf("track %s has no baseUrl: %w", lang, engine.ErrNoCaptionsFound)
	}

	payload, err := e.fetchTimedText(ctx, e.resolveTrackURL(track.BaseURL))
	if err != nil {
		return nil, lang, msgParseFailed, err
	}

	segs, parser := ParseTimedText(payload)
	if len(segs) == 0 {
		return nil, lang, msgParseFailed, fmt.Errorf("timed text: no cues matched: %w", engine.ErrNoCaptionsFound)
	}
	slog.Debug("captions: parsed", slog.String("parser", parser), slog.Int("segments", len(segs)))
	return segs, lang, "", nil
}

// pickTrack prefers a target-language track, then an auto-generated one, then the first.
func pickTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, t := range tracks {
		for _, l := range langs {
			if t.LanguageCode == l {
				return t
			}
		}
	}
	for _, t := range tracks {
		if t.Kind == "asr" {
			return t
		}
	}
	return tracks[0]
}

// resolveTrackURL makes a relative track URL absolute against the watch page origin.
func (e *CaptionExtractor) resolveTrackURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() {
		return raw
	}
	base, err := url.Parse(e.baseURL + "/")
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}

// fetchTimedText downloads a track's timed-text payload.
func (e *CaptionExtractor) fetchTimedText(ctx context.Context, trackURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, e.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return e.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext HTTP %d: %w", resp.StatusCode, engine.ErrUpstreamUnavailable)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, timedTextLimit))
	if err != nil {
		return "", fmt.Errorf("read timedtext: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("timedtext: %w", engine.ErrEmptyUpstreamResponse)
	}
	return string(body), nil
}
