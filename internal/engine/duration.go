package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts "PT#H#M#S" to total seconds.
// ok is false when s does not match the pattern.
func ParseISODuration(s string) (seconds int, ok bool) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(orZero(m[1]))
	mins, _ := strconv.Atoi(orZero(m[2]))
	sec, _ := strconv.Atoi(orZero(m[3]))
	return h*3600 + mins*60 + sec, true
}

// FormatISODuration renders an ISO-8601 duration as "H:MM:SS" or "M:SS".
// Unparseable input renders as "0:00".
func FormatISODuration(s string) string {
	seconds, ok := ParseISODuration(s)
	if !ok {
		return "0:00"
	}
	return FormatDuration(seconds)
}

// FormatDuration renders seconds as "H:MM:SS" when an hour or longer, else "M:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatClock renders a timeline offset as "M:SS" with unbounded minutes.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatTimeRange renders "M:SS-M:SS".
func FormatTimeRange(start, end float64) string {
	return FormatClock(start) + "-" + FormatClock(end)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
