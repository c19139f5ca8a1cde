package sources

import (
	"encoding/json"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Player response types: only the fields the caption stage reads.

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// tracks returns the caption track list, nil when the player has no captions.
func (p playerResponse) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

func (p playerResponse) unplayableReason() string {
	if p.PlayabilityStatus != nil && p.PlayabilityStatus.Reason != "" {
		return p.PlayabilityStatus.Reason
	}
	return "no captions in player response"
}

type captionTrack struct {
	BaseURL      string    `json:"baseUrl"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"` // "asr" = auto-generated
	VssID        string    `json:"vssId"`
	Name         trackName `json:"name"`
}

// trackName decodes both {"simpleText": "..."} and {"runs": [{"text": "..."}]}.
type trackName string

func (n *trackName) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*n = trackName(plain)
		return nil
	}
	var obj struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil // name is cosmetic; never fail the track list on it
	}
	s := obj.SimpleText
	for _, r := range obj.Runs {
		s += r.Text
	}
	*n = trackName(s)
	return nil
}

func (t captionTrack) toEngine() engine.CaptionTrack {
	return engine.CaptionTrack{
		BaseURL:      t.BaseURL,
		LanguageCode: t.LanguageCode,
		Kind:         t.Kind,
		Name:         string(t.Name),
	}
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	return extractBalanced(b, '{', '}')
}

// extractJSONArray extracts a complete JSON array starting at b[0] == '['.
func extractJSONArray(b []byte) []byte {
	return extractBalanced(b, '[', ']')
}

// extractBalanced returns the prefix of b that closes the open bracket at b[0],
// skipping brackets inside string literals. Returns nil when unbalanced.
func extractBalanced(b []byte, open, closing byte) []byte {
	if len(b) == 0 || b[0] != open {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
