package sources

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// YouTube implementation is split across files by responsibility:
//   youtube_player.go      player-response types and the brace-depth JSON extractor
//   youtube_watch.go       watch page fetch, caption-track markers, page metadata markers
//   timedtext.go           timed-text payload parser cascade and entity decoding
//   youtube_innertube.go   ANDROID player request, second source for the track list
//   youtube_transcript.go  CaptionExtractor (track selection, payload fetch, fallback metadata)
//   youtube_videoinfo.go   Data API v3 video metadata resolver

var (
	videoIDRE     = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareVideoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ParseVideoID accepts a bare 11-char video id or any common YouTube URL form.
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("video id: %w", engine.ErrMissingParameter)
	}
	if bareVideoIDRE.MatchString(input) {
		return input, nil
	}
	if m := videoIDRE.FindStringSubmatch(input); len(m) >= 2 {
		return m[1], nil
	}
	return "", fmt.Errorf("not a YouTube video id or URL: %q: %w", input, engine.ErrMissingParameter)
}
