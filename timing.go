package wxicons

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCycleMs is the cycle duration used when a source declares none.
const DefaultCycleMs = 2000

// Timing holds the total duration of one animation loop.
type Timing struct {
	CycleMs int
}

// Cycle returns the cycle duration as a time.Duration.
func (t Timing) Cycle() time.Duration {
	return time.Duration(t.CycleMs) * time.Millisecond
}

// durationAttr matches the first animation duration declared in an SVG document,
// either as a SMIL dur attribute on an animation element or as a CSS
// animation-duration property.
var durationAttr = regexp.MustCompile(
	`(?s)<(?:animate|animateTransform|animateMotion|set)\b[^>]*?\sdur\s*=\s*["']([^"']*)["']` +
		`|animation-duration\s*:\s*([^;"'}]+)`,
)

// ParseTiming scans the vector source for its first declared animation duration.
// It falls back to DefaultCycleMs when nothing usable is declared.
func ParseTiming(src []byte) Timing {
	m := durationAttr.FindSubmatch(src)
	if m == nil {
		return Timing{CycleMs: DefaultCycleMs}
	}
	val := string(m[1])
	if len(m[1]) == 0 {
		val = string(m[2])
	}
	ms, err := parseClockValue(val)
	if err != nil || ms <= 0 {
		return Timing{CycleMs: DefaultCycleMs}
	}
	return Timing{CycleMs: ms}
}

// ReadTiming reads the vector source from path and extracts its timing.
// A read failure is not fatal: the default timing is returned together
// with the error, which callers report as a warning.
func ReadTiming(path string) (Timing, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Timing{CycleMs: DefaultCycleMs}, fmt.Errorf("could not read animation timing from %s: %w", path, err)
	}
	return ParseTiming(src), nil
}

// parseClockValue converts a duration such as "2s", "500ms", "1.5" or "0.25min"
// to milliseconds, rounded to the nearest integer. A bare number is in seconds.
func parseClockValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	// The first value wins when a list of durations is declared.
	if i := strings.IndexAny(s, ", "); i >= 0 {
		s = s[:i]
	}

	unit := 1000.0
	switch {
	case strings.HasSuffix(s, "ms"):
		s, unit = strings.TrimSuffix(s, "ms"), 1
	case strings.HasSuffix(s, "min"):
		s, unit = strings.TrimSuffix(s, "min"), 60000
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	case strings.HasSuffix(s, "h"):
		s, unit = strings.TrimSuffix(s, "h"), 3600000
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v*unit > math.MaxInt32 {
		return 0, fmt.Errorf("duration out of range: %v", v)
	}
	return int(math.Round(v * unit)), nil
}
