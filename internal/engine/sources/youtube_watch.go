package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
	"golang.org/x/net/html"
)

const (
	// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "
	// ytCaptionTracksMarker is the looser marker: the bare track-list key anywhere in the page.
	ytCaptionTracksMarker = `"captionTracks":`
	ytWatchPageLimit      = 6 * 1024 * 1024
)

// fetchWatchPage downloads the watch page HTML for videoID.
func fetchWatchPage(ctx context.Context, client *http.Client, baseURL, videoID string, rc engine.RetryConfig) ([]byte, error) {
	watchURL := strings.TrimRight(baseURL, "/") + "/watch?v=" + videoID

	resp, err := engine.RetryHTTP(ctx, rc, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range engine.ChromeHeaders() {
			if strings.EqualFold(k, "Accept-Encoding") {
				continue // keep transparent gzip handling
			}
			req.Header.Set(k, v)
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
		return client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page HTTP %d: %w", resp.StatusCode, engine.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ytWatchPageLimit))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	return body, nil
}

// --- Caption track-list markers ---

// trackListMarker locates the caption track list in a watch page.
// Each marker is independent; ok=false means the marker was not usable on this page.
type trackListMarker interface {
	Name() string
	Find(page []byte) (tracks []captionTrack, ok bool)
}

// trackListMarkers are tried in order: the structured player response first, then the bare key.
var trackListMarkers = []trackListMarker{
	playerResponseMarker{},
	captionTracksKeyMarker{},
}

// playerResponseMarker parses the full ytInitialPlayerResponse blob.
type playerResponseMarker struct{}

func (playerResponseMarker) Name() string { return "player_response" }

func (playerResponseMarker) Find(page []byte) ([]captionTrack, bool) {
	idx := bytes.Index(page, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, false
	}
	blob := extractJSON(page[idx+len(ytInitialPlayerResponseMarker):])
	if blob == nil {
		return nil, false
	}
	var pr playerResponse
	if err := json.Unmarshal(blob, &pr); err != nil {
		return nil, false
	}
	tracks := pr.tracks()
	return tracks, len(tracks) > 0
}

// captionTracksKeyMarker finds `"captionTracks": [...]` anywhere in the page.
type captionTracksKeyMarker struct{}

func (captionTracksKeyMarker) Name() string { return "caption_tracks_key" }

func (captionTracksKeyMarker) Find(page []byte) ([]captionTrack, bool) {
	idx := bytes.Index(page, []byte(ytCaptionTracksMarker))
	if idx < 0 {
		return nil, false
	}
	rest := bytes.TrimLeft(page[idx+len(ytCaptionTracksMarker):], " \t\r\n")
	arr := extractJSONArray(rest)
	if arr == nil {
		return nil, false
	}
	var tracks []captionTrack
	if err := json.Unmarshal(arr, &tracks); err != nil {
		return nil, false
	}
	return tracks, len(tracks) > 0
}

// findCaptionTracks runs the marker cascade and reports which marker matched.
func findCaptionTracks(page []byte) ([]captionTrack, string) {
	for _, m := range trackListMarkers {
		if tracks, ok := m.Find(page); ok {
			return tracks, m.Name()
		}
	}
	return nil, ""
}

// --- Page metadata markers ---

var (
	shortDescriptionRe = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`)
	ownerChannelNameRe = regexp.MustCompile(`"ownerChannelName":"((?:[^"\\]|\\.)*)"`)
	lengthSecondsRe    = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	viewCountRe        = regexp.MustCompile(`"viewCount":"(\d+)"`)
)

// pageMetadata is what the watch page says about the video, marker by marker.
type pageMetadata struct {
	Title         string
	Description   string
	Channel       string
	LengthSeconds int
	ViewCount     int64
}

// scrapePageMetadata reads each metadata marker independently; a missing marker leaves its field empty.
func scrapePageMetadata(page []byte) pageMetadata {
	var md pageMetadata
	md.Title = strings.TrimSuffix(pageTitle(page), " - YouTube")
	md.Description = jsonStringMarker(shortDescriptionRe, page)
	md.Channel = jsonStringMarker(ownerChannelNameRe, page)
	if m := lengthSecondsRe.FindSubmatch(page); m != nil {
		md.LengthSeconds, _ = strconv.Atoi(string(m[1]))
	}
	if m := viewCountRe.FindSubmatch(page); m != nil {
		md.ViewCount, _ = strconv.ParseInt(string(m[1]), 10, 64)
	}
	return md
}

// pageTitle returns the text of the first <title> element.
func pageTitle(page []byte) string {
	z := html.NewTokenizer(bytes.NewReader(page))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(html.UnescapeString(string(z.Text())))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// jsonStringMarker returns the JSON-unescaped value captured by re.
func jsonStringMarker(re *regexp.Regexp, page []byte) string {
	m := re.FindSubmatch(page)
	if m == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(append(append([]byte{'"'}, m[1]...), '"'), &s); err != nil {
		return string(m[1])
	}
	return s
}

// toVideoInfo converts page metadata to the resolver's shape.
func (md pageMetadata) toVideoInfo(videoID string) engine.VideoInfo {
	return engine.VideoInfo{
		ID:              videoID,
		Title:           md.Title,
		ChannelTitle:    md.Channel,
		Duration:        engine.FormatDuration(md.LengthSeconds),
		DurationSeconds: md.LengthSeconds,
		Description:     md.Description,
	}
}

// toFallback derives the run's FallbackMetadata from page metadata.
func (md pageMetadata) toFallback() *engine.FallbackMetadata {
	fb := engine.DeriveFallback(md.Title, md.Description)
	fb.Channel = md.Channel
	fb.DurationSeconds = md.LengthSeconds
	fb.Duration = engine.FormatDuration(md.LengthSeconds)
	fb.ViewCount = md.ViewCount
	return &fb
}
