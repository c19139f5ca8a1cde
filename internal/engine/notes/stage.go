// Package notes turns timed captions (or, without captions, video metadata)
// into a structured learning note. Stages run strictly in order and every
// upstream failure inside a stage degrades to deterministic local content.
package notes

import "time"

// StageResult is the tagged outcome of a stage that may fall back.
// Value is always usable; Fallback reports that it was built locally and Err holds the cause.
type StageResult[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

func succeeded[T any](v T) StageResult[T] {
	return StageResult[T]{Value: v}
}

func fellBack[T any](v T, err error) StageResult[T] {
	return StageResult[T]{Value: v, Fallback: true, Err: err}
}

// Options holds the pipeline's heuristic bounds.
type Options struct {
	WindowSeconds float64       // a window closes once a segment starts more than this after the window start
	MaxKeyPoints  int           // key points kept per section
	MinPointLen   int           // key point length lower bound, exclusive, in characters
	MaxPointLen   int           // key point length upper bound, exclusive, in characters
	MinInsightLen int           // shorter key insights are replaced by the validator
	SummaryLen    int           // cleaned-text excerpt length for the local section summary
	RunTimeout    time.Duration // 0 = no run deadline
}

// DefaultOptions returns the standard bounds.
func DefaultOptions() Options {
	return Options{
		WindowSeconds: 300,
		MaxKeyPoints:  3,
		MinPointLen:   10,
		MaxPointLen:   200,
		MinInsightLen: 10,
		SummaryLen:    200,
		RunTimeout:    5 * time.Minute,
	}
}

// withDefaults replaces non-positive bounds with the defaults.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WindowSeconds <= 0 {
		o.WindowSeconds = d.WindowSeconds
	}
	if o.MaxKeyPoints <= 0 {
		o.MaxKeyPoints = d.MaxKeyPoints
	}
	if o.MinPointLen <= 0 {
		o.MinPointLen = d.MinPointLen
	}
	if o.MaxPointLen <= o.MinPointLen {
		o.MaxPointLen = d.MaxPointLen
	}
	if o.MinInsightLen <= 0 {
		o.MinInsightLen = d.MinInsightLen
	}
	if o.SummaryLen <= 0 {
		o.SummaryLen = d.SummaryLen
	}
	return o
}
