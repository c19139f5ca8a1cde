package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/google/uuid"
)

// CaptionSource extracts timed captions for a video.
// It returns an error only for a missing video id; every other failure is a
// result without segments.
type CaptionSource interface {
	Extract(ctx context.Context, videoID string) (engine.CaptionResult, error)
}

// MetadataSource resolves title, channel and duration of a video.
type MetadataSource interface {
	Resolve(ctx context.Context, videoID string) (engine.VideoInfo, error)
}

const unknownChannel = "알 수 없음"

// Deps are the collaborators of one Orchestrator. Metadata may be nil.
type Deps struct {
	Captions  CaptionSource
	Metadata  MetadataSource
	Generator engine.TextGenerator
	Options   Options
}

// Orchestrator runs the note pipeline:
// resolve → captions → preprocess → segment → key points → analyze → synthesize → structure → validate.
type Orchestrator struct {
	captions    CaptionSource
	metadata    MetadataSource
	gen         engine.TextGenerator
	opts        Options
	keyPoints   *KeyPointExtractor
	analyzer    *SectionAnalyzer
	synthesizer *NoteSynthesizer
}

// NewOrchestrator wires the stages.
func NewOrchestrator(d Deps) *Orchestrator {
	opts := d.Options.withDefaults()
	return &Orchestrator{
		captions:    d.Captions,
		metadata:    d.Metadata,
		gen:         d.Generator,
		opts:        opts,
		keyPoints:   NewKeyPointExtractor(opts),
		analyzer:    NewSectionAnalyzer(d.Generator, opts),
		synthesizer: NewNoteSynthesizer(d.Generator),
	}
}

// RunContext is the per-run state threaded through the stages.
// The fallback metadata is written at most once.
type RunContext struct {
	ID      string
	VideoID string
	Started time.Time
	Info    engine.VideoInfo

	fallback *engine.FallbackMetadata

	SectionFallbacks   int
	SynthesisFallback  bool
	ValidatorRepaired  bool
	CaptionLanguage    string
	TranscriptSegments int
}

// Fallback returns the run's fallback metadata, or nil when captions were recovered.
func (rc *RunContext) Fallback() *engine.FallbackMetadata {
	return rc.fallback
}

// setFallback stores fb unless one is already set. It reports whether fb was stored.
func (rc *RunContext) setFallback(fb *engine.FallbackMetadata) bool {
	if rc.fallback != nil || fb == nil {
		return false
	}
	cp := *fb
	cp.Keywords = append([]string(nil), fb.Keywords...)
	cp.Topics = append([]string(nil), fb.Topics...)
	rc.fallback = &cp
	return true
}

// Run generates a note for videoID, reporting milestones to sink (nil = discard).
// Only a missing video id, a missing text generator, or the run deadline fail the run.
func (o *Orchestrator) Run(ctx context.Context, videoID string, sink ProgressSink) (note engine.GeneratedNote, err error) {
	if sink == nil {
		sink = nopSink{}
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return note, fmt.Errorf("generate note: video id: %w", engine.ErrMissingParameter)
	}
	if o.gen == nil {
		return note, fmt.Errorf("generate note: text generation credential: %w", engine.ErrMissingParameter)
	}
	if o.captions == nil {
		return note, errors.New("generate note: no caption source configured")
	}

	if o.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RunTimeout)
		defer cancel()
	}

	rc := &RunContext{ID: uuid.NewString(), VideoID: videoID, Started: time.Now()}
	log := slog.With(slog.String("run", rc.ID), slog.String("video", videoID))
	log.Info("note: run started")

	defer func() {
		if err != nil {
			engine.IncrNoteFailures()
			log.Warn("note: run failed", slog.String("kind", engine.ErrorKind(err)), slog.Any("error", err))
			return
		}
		engine.IncrNotesGenerated()
		log.Info("note: run complete",
			slog.Int("sections", len(note.Sections)),
			slog.Int("section_fallbacks", rc.SectionFallbacks),
			slog.Bool("synthesis_fallback", rc.SynthesisFallback),
			slog.Bool("metadata_only", rc.fallback != nil),
			slog.Int64("ms", note.ProcessingTimeMs))
	}()

	// 10%: video metadata.
	sink.Report(stepResolve.event(""))
	rc.Info = o.resolve(ctx, rc, log)

	// 20%: captions.
	sink.Report(stepCaptions.event(""))
	capRes, err := o.captions.Extract(ctx, videoID)
	if err != nil {
		return note, fmt.Errorf("generate note: %w", err)
	}
	rc.CaptionLanguage = capRes.Language
	rc.Info = mergeInfo(rc.Info, capRes.Video, videoID)
	if capRes.Message != "" {
		log.Info("note: captions", slog.String("message", capRes.Message))
	}

	// 30%: preprocess.
	sink.Report(stepPreprocess.event(""))
	segs := Preprocess(capRes.Segments)
	rc.TranscriptSegments = len(segs)
	if len(segs) == 0 {
		o.ensureFallback(rc, capRes.Fallback, log)
	}
	if err := ctx.Err(); err != nil {
		return note, fmt.Errorf("generate note: %w", err)
	}

	// 40%: segment.
	sink.Report(stepSegment.event(""))
	windows := Segment(segs, o.totalSeconds(rc, segs), o.opts.WindowSeconds)

	// 50%: key points.
	sink.Report(stepKeyPoints.event(fmt.Sprintf("%d개 구간", len(windows))))
	sections := make([]engine.ProcessedSection, len(windows))
	for i, w := range windows {
		sections[i] = o.keyPoints.Extract(w, i, len(windows), rc.Fallback())
	}

	// 60%: stage-1 analysis, strictly sequential.
	sink.Report(stepAnalyze.event(""))
	analyses := make([]engine.SectionAnalysis, len(sections))
	for i, s := range sections {
		if err := ctx.Err(); err != nil {
			return note, fmt.Errorf("generate note: section %d: %w", i+1, err)
		}
		res := o.analyzer.Analyze(ctx, s, i)
		if res.Fallback {
			rc.SectionFallbacks++
			engine.IncrSectionFallbacks()
			log.Warn("note: section analysis fell back",
				slog.Int("section", i+1), slog.String("kind", engine.ErrorKind(res.Err)), slog.Any("error", res.Err))
		}
		analyses[i] = res.Value
	}

	// 70%: stage-2 synthesis.
	if err := ctx.Err(); err != nil {
		return note, fmt.Errorf("generate note: %w", err)
	}
	sink.Report(stepSynthesize.event(""))
	syn := o.synthesizer.Synthesize(ctx, analyses, rc.Info)
	if syn.Fallback {
		rc.SynthesisFallback = true
		engine.IncrSynthesisFallbacks()
		log.Warn("note: synthesis fell back", slog.String("kind", engine.ErrorKind(syn.Err)), slog.Any("error", syn.Err))
	}

	// 80%: structure.
	sink.Report(stepStructure.event(""))
	note = structure(syn.Value, rc.Info)

	// 90%: validate.
	sink.Report(stepValidate.event(""))
	note, rc.ValidatorRepaired = Validate(note, o.opts.MinInsightLen)
	if rc.ValidatorRepaired {
		engine.IncrValidatorRepairs()
	}

	note.ProcessingTimeMs = time.Since(rc.Started).Milliseconds()
	sink.Report(stepDone.event(fmt.Sprintf("총 %d초 소요", (note.ProcessingTimeMs+500)/1000)))
	return note, nil
}

// resolve looks up video metadata. Failure degrades to page-scraped data later.
func (o *Orchestrator) resolve(ctx context.Context, rc *RunContext, log *slog.Logger) engine.VideoInfo {
	if o.metadata == nil {
		return engine.VideoInfo{ID: rc.VideoID}
	}
	info, err := o.metadata.Resolve(ctx, rc.VideoID)
	if err != nil {
		log.Warn("note: metadata lookup failed, using page metadata",
			slog.String("kind", engine.ErrorKind(err)), slog.Any("error", err))
		return engine.VideoInfo{ID: rc.VideoID}
	}
	return info
}

// ensureFallback sets the run's fallback metadata once: from the caption stage
// when it built one, otherwise derived from whatever metadata the run holds.
func (o *Orchestrator) ensureFallback(rc *RunContext, fromCaptions *engine.FallbackMetadata, log *slog.Logger) {
	fb := fromCaptions
	if fb == nil && hasMetadata(rc.Info) {
		derived := engine.DeriveFallback(rc.Info.Title, rc.Info.Description)
		derived.Channel = rc.Info.ChannelTitle
		derived.Duration = rc.Info.Duration
		derived.DurationSeconds = rc.Info.DurationSeconds
		fb = &derived
	}
	if rc.setFallback(fb) {
		log.Info("note: no transcript, using metadata", slog.String("topic", fb.PrimaryTopic()))
	}
}

// hasMetadata reports whether info holds more than the bare id.
func hasMetadata(info engine.VideoInfo) bool {
	return (info.Title != "" && info.Title != info.ID) || info.Description != ""
}

// totalSeconds picks the best known duration of the video.
func (o *Orchestrator) totalSeconds(rc *RunContext, segs []engine.TimedTextSegment) float64 {
	if rc.Info.DurationSeconds > 0 {
		return float64(rc.Info.DurationSeconds)
	}
	if fb := rc.Fallback(); fb != nil && fb.DurationSeconds > 0 {
		return float64(fb.DurationSeconds)
	}
	if n := len(segs); n > 0 {
		return segs[n-1].Start + segs[n-1].Duration
	}
	return 0
}

// mergeInfo fills fields the resolver did not provide from page metadata.
// The title falls back to the video id.
func mergeInfo(info engine.VideoInfo, page *engine.VideoInfo, videoID string) engine.VideoInfo {
	info.ID = videoID
	if page != nil {
		if info.Title == "" {
			info.Title = page.Title
		}
		if info.ChannelTitle == "" {
			info.ChannelTitle = page.ChannelTitle
		}
		if info.DurationSeconds == 0 && page.DurationSeconds > 0 {
			info.DurationSeconds = page.DurationSeconds
			info.Duration = page.Duration
		}
		if info.Description == "" {
			info.Description = page.Description
		}
	}
	if info.Title == "" {
		info.Title = videoID
	}
	if info.Duration == "" && info.DurationSeconds > 0 {
		info.Duration = engine.FormatDuration(info.DurationSeconds)
	}
	return info
}

// structure assembles the caller-facing note.
func structure(s Synthesis, info engine.VideoInfo) engine.GeneratedNote {
	channel := info.ChannelTitle
	if channel == "" {
		channel = unknownChannel
	}
	duration := info.Duration
	if duration == "" {
		duration = "0:00"
	}
	return engine.GeneratedNote{
		Title:        info.Title,
		ChannelTitle: channel,
		Duration:     duration,
		KeyInsight:   s.KeyInsight,
		Sections:     s.Sections,
	}
}
