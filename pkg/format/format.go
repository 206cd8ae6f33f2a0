// Package format turns API values into display strings for the CLI and the
// server.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout renders timestamps as "Jan 02, 2006 15:04:05".
const DateLayout = "Jan 02, 2006 15:04:05"

// zoneless layouts the API emits for naive UTC timestamps.
var zoneless = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses an API timestamp. Timestamps without a zone designator
// are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zoneless {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatDate renders an API timestamp in the local zone. Unparseable input
// is returned unchanged, and empty input renders as "-".
func FormatDate(s string) string {
	if s == "" {
		return "-"
	}
	t, err := ParseTime(s)
	if err != nil {
		return s
	}
	return FormatTime(t.Local())
}

// FormatTime renders t with [DateLayout] in its own zone.
func FormatTime(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatRelative renders an API timestamp relative to now, e.g.
// "3 minutes ago".
func FormatRelative(s string) string {
	return RelativeTo(s, time.Now())
}

// RelativeTo renders s relative to now.
func RelativeTo(s string, now time.Time) string {
	if s == "" {
		return "-"
	}
	t, err := ParseTime(s)
	if err != nil {
		return s
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDuration renders a duration in seconds:
//
//	12.344 -> "12.34s"
//	185    -> "3m 5s"
//	7380   -> "2h 3m"
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	minutes := int(math.Floor(seconds / 60))
	if minutes < 60 {
		rest := math.Mod(seconds, 60)
		return fmt.Sprintf("%dm %ds", minutes, int(math.Round(rest)))
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatOptionalDuration renders a nil duration as "-".
func FormatOptionalDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return FormatDuration(*seconds)
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
