package engine

// GenerateNoteInput is the input for the generate_note tool.
type GenerateNoteInput struct {
	Video         string `json:"video" jsonschema:"YouTube video id (11 characters) or watch/youtu.be/shorts/embed URL"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty" jsonschema:"Gemini API key for this request (default: server key)"`
	YouTubeAPIKey string `json:"youtube_api_key,omitempty" jsonschema:"YouTube Data API key for title/channel/duration lookup (default: server key; page metadata is used without one)"`
}

// VideoInfoInput is the input for the video_info tool.
type VideoInfoInput struct {
	Video         string `json:"video" jsonschema:"YouTube video id or URL"`
	YouTubeAPIKey string `json:"youtube_api_key,omitempty" jsonschema:"YouTube Data API key (default: server key)"`
}

// VideoCaptionsInput is the input for the video_captions tool.
type VideoCaptionsInput struct {
	Video string `json:"video" jsonschema:"YouTube video id or URL"`
}

// AnalyzeSectionInput is the input for the analyze_section tool.
type AnalyzeSectionInput struct {
	TimeRange    string   `json:"timeRange" jsonschema:"Section time range, e.g. 0:00-5:00"`
	Text         string   `json:"text,omitempty" jsonschema:"Section transcript text"`
	KeyPoints    []string `json:"keyPoints,omitempty" jsonschema:"Key sentences of the section"`
	Index        int      `json:"index,omitempty" jsonschema:"0-based section number, used for the fallback title"`
	GeminiAPIKey string   `json:"gemini_api_key,omitempty" jsonschema:"Gemini API key for this request (default: server key)"`
}

// AnalyzeSectionOutput is a section analysis plus how it was produced.
type AnalyzeSectionOutput struct {
	TimeRange string   `json:"timeRange"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Concepts  []string `json:"concepts"`
	Actions   []string `json:"actions"`
	Fallback  bool     `json:"fallback"`
	Reason    string   `json:"reason,omitempty"`
}
