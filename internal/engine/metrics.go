package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	NotesGenerated     atomic.Int64
	NoteFailures       atomic.Int64
	CaptionRequests    atomic.Int64
	CaptionFallbacks   atomic.Int64
	VideoInfoRequests  atomic.Int64
	VideoInfoErrors    atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	LLMSafetyBlocks    atomic.Int64
	LLMMalformed       atomic.Int64
	SectionFallbacks   atomic.Int64
	SynthesisFallbacks atomic.Int64
	ValidatorRepairs   atomic.Int64
}

var metricKeys = []string{
	"notes_generated", "note_failures",
	"caption_requests", "caption_fallbacks",
	"video_info_requests", "video_info_errors",
	"llm_calls", "llm_errors", "llm_safety_blocks", "llm_malformed",
	"section_fallbacks", "synthesis_fallbacks", "validator_repairs",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"notes_generated":     metrics.NotesGenerated.Load(),
		"note_failures":       metrics.NoteFailures.Load(),
		"caption_requests":    metrics.CaptionRequests.Load(),
		"caption_fallbacks":   metrics.CaptionFallbacks.Load(),
		"video_info_requests": metrics.VideoInfoRequests.Load(),
		"video_info_errors":   metrics.VideoInfoErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"llm_safety_blocks":   metrics.LLMSafetyBlocks.Load(),
		"llm_malformed":       metrics.LLMMalformed.Load(),
		"section_fallbacks":   metrics.SectionFallbacks.Load(),
		"synthesis_fallbacks": metrics.SynthesisFallbacks.Load(),
		"validator_repairs":   metrics.ValidatorRepairs.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrNotesGenerated()     { metrics.NotesGenerated.Add(1) }
func IncrNoteFailures()       { metrics.NoteFailures.Add(1) }
func IncrCaptionRequests()    { metrics.CaptionRequests.Add(1) }
func IncrCaptionFallbacks()   { metrics.CaptionFallbacks.Add(1) }
func IncrVideoInfoRequests()  { metrics.VideoInfoRequests.Add(1) }
func IncrVideoInfoErrors()    { metrics.VideoInfoErrors.Add(1) }
func IncrSectionFallbacks()   { metrics.SectionFallbacks.Add(1) }
func IncrSynthesisFallbacks() { metrics.SynthesisFallbacks.Add(1) }
func IncrValidatorRepairs()   { metrics.ValidatorRepairs.Add(1) }

// recordLLMError counts a failed generation call by kind.
func recordLLMError(err error) {
	metrics.LLMErrors.Add(1)
	switch ErrorKind(err) {
	case "safety_blocked":
		metrics.LLMSafetyBlocks.Add(1)
	case "malformed_output":
		metrics.LLMMalformed.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 30*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
