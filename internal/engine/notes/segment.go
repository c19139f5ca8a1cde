package notes

import "github.com/anatolykoptev/go_note/internal/engine"

// Segment groups segments into contiguous windows. A window closes when the next
// segment starts more than windowSeconds after the window start; the boundary
// segment opens the next window. Windows jointly cover [0, totalSeconds].
//
// With no segments a single window spans the whole video. When totalSeconds is
// unknown (<= 0) the last window ends where the last segment ends.
func Segment(segs []engine.TimedTextSegment, totalSeconds, windowSeconds float64) []engine.TimeWindow {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	if len(segs) == 0 {
		return []engine.TimeWindow{{Start: 0, End: totalSeconds}}
	}

	var windows []engine.TimeWindow
	cur := engine.TimeWindow{Start: 0}
	for _, s := range segs {
		if s.Start-cur.Start > windowSeconds && len(cur.Segments) > 0 {
			cur.End = s.Start
			windows = append(windows, cur)
			cur = engine.TimeWindow{Start: s.Start}
		}
		cur.Segments = append(cur.Segments, s)
	}

	end := totalSeconds
	if end <= 0 {
		last := segs[len(segs)-1]
		end = last.Start + last.Duration
	}
	if end < cur.Start {
		end = cur.Start
	}
	cur.End = end
	return append(windows, cur)
}

// WindowRange renders a window as "M:SS-M:SS".
func WindowRange(w engine.TimeWindow) string {
	return engine.FormatTimeRange(w.Start, w.End)
}
