package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Innertube ANDROID /player: a second source for the caption track list when
// neither watch page marker is present (consent walls, stripped pages).

const (
	ytInnertubePlayerPath = "/youtubei/v1/player"
	ytAndroidVersion      = "20.10.38"
	ytAndroidSDK          = 30
	maxPlayerBody         = 3 << 20
)

// androidHeaders identify the request as the Android app; the ANDROID client
// gets caption tracks without the web client's signature checks.
var androidHeaders = map[string]string{
	"Content-Type":             "application/json",
	"User-Agent":               "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip",
	"X-Youtube-Client-Name":    "3",
	"X-Youtube-Client-Version": ytAndroidVersion,
}

type playerRequest struct {
	VideoID        string `json:"videoId"`
	RacyCheckOk    bool   `json:"racyCheckOk"`
	ContentCheckOk bool   `json:"contentCheckOk"`
	Context        struct {
		Client playerClient `json:"client"`
	} `json:"context"`
}

type playerClient struct {
	Name       string `json:"clientName"`
	Version    string `json:"clientVersion"`
	SDKVersion int    `json:"androidSdkVersion,omitempty"`
	Lang       string `json:"hl,omitempty"`
	Region     string `json:"gl,omitempty"`
}

// newAndroidPlayerRequest asks for Korean UI strings so playability reasons
// come back in the same language as the note.
func newAndroidPlayerRequest(videoID string) playerRequest {
	pr := playerRequest{VideoID: videoID, RacyCheckOk: true, ContentCheckOk: true}
	pr.Context.Client = playerClient{
		Name:       "ANDROID",
		Version:    ytAndroidVersion,
		SDKVersion: ytAndroidSDK,
		Lang:       "ko",
		Region:     "KR",
	}
	return pr
}

// fetchInnertubeTracks asks the ANDROID player endpoint for the caption track list.
// A player response without captions wraps ErrNoCaptionsFound with the playability reason.
func fetchInnertubeTracks(ctx context.Context, client *http.Client, baseURL, videoID string, rc engine.RetryConfig) ([]captionTrack, error) {
	body, err := json.Marshal(newAndroidPlayerRequest(videoID))
	if err != nil {
		return nil, err
	}

	endpoint := baseURL + ytInnertubePlayerPath + "?prettyPrint=false"
	resp, err := engine.RetryHTTP(ctx, rc, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		for k, v := range androidHeaders {
			req.Header.Set(k, v)
		}
		return client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube player: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("innertube player HTTP %d: %w", resp.StatusCode, engine.ErrUpstreamUnavailable)
	}

	var player playerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerBody)).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode innertube player: %v: %w", err, engine.ErrUpstreamUnavailable)
	}
	tracks := player.tracks()
	if len(tracks) == 0 {
		return nil, fmt.Errorf("innertube player: %s: %w", player.unplayableReason(), engine.ErrNoCaptionsFound)
	}
	return tracks, nil
}
