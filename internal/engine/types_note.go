package engine

// --- Caption / transcript types ---

// TimedTextSegment is one caption cue. Start is never negative.
type TimedTextSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionTrack describes one caption track offered by the watch page.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	Name         string `json:"name,omitempty"`
}

// FallbackMetadata is the substitute input used when no transcript is recoverable.
// Created at most once per run and never modified afterwards.
type FallbackMetadata struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Channel         string   `json:"channel"`
	Duration        string   `json:"duration"`
	DurationSeconds int      `json:"durationSeconds"`
	ViewCount       int64    `json:"viewCount,omitempty"`
	Keywords        []string `json:"extractedKeywords"`
	Topics          []string `json:"estimatedTopics"`
}

// PrimaryTopic returns the first estimated topic, or DefaultTopic.
func (m *FallbackMetadata) PrimaryTopic() string {
	if m == nil || len(m.Topics) == 0 {
		return DefaultTopic
	}
	return m.Topics[0]
}

// CaptionResult is the output of caption extraction.
// Zero segments is a normal outcome; Fallback is then set whenever page metadata was available.
type CaptionResult struct {
	Segments []TimedTextSegment `json:"transcripts"`
	Language string             `json:"language,omitempty"`
	Fallback *FallbackMetadata  `json:"fallbackData,omitempty"`
	Video    *VideoInfo         `json:"video,omitempty"` // page-scraped; fills resolver gaps
	Message  string             `json:"message,omitempty"`
}

// VideoInfo is the resolved metadata of a video.
type VideoInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ChannelTitle    string `json:"channelTitle"`
	Duration        string `json:"duration"` // "M:SS" or "H:MM:SS"
	DurationSeconds int    `json:"durationSeconds"`
	Description     string `json:"description"`
	PublishedAt     string `json:"publishedAt,omitempty"`
}

// --- Pipeline types ---

// TimeWindow is a contiguous span of the timeline used as the unit of summarization.
type TimeWindow struct {
	Start    float64            `json:"start"`
	End      float64            `json:"end"`
	Segments []TimedTextSegment `json:"segments"`
}

// SectionHint carries template-derived suggestions for sections built without a transcript.
type SectionHint struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Action  string `json:"action"`
}

// ProcessedSection is a time window reduced to text and key points.
type ProcessedSection struct {
	TimeRange   string       `json:"timeRange"`
	RawText     string       `json:"rawText"`
	CleanedText string       `json:"cleanedText"`
	KeyPoints   []string     `json:"keyPoints"`
	Hint        *SectionHint `json:"hint,omitempty"`
}

// SectionAnalysis is the stage-1 output for one section.
type SectionAnalysis struct {
	TimeRange string   `json:"timeRange"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Concepts  []string `json:"concepts"`
	Actions   []string `json:"actions"`
}

// NoteSection is the final per-section shape exposed to the caller.
type NoteSection struct {
	TimeRange    string   `json:"timeRange"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	KeyConcepts  []string `json:"keyConcepts"`
	ActionPoints []string `json:"actionPoints"`
}

// GeneratedNote is the pipeline output. It lives only for the duration of one request.
type GeneratedNote struct {
	Title            string        `json:"title"`
	ChannelTitle     string        `json:"channelTitle"`
	Duration         string        `json:"duration"`
	KeyInsight       string        `json:"keyInsight"`
	Sections         []NoteSection `json:"sections"`
	ProcessingTimeMs int64         `json:"processingTimeMs"`
}
