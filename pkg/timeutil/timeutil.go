// Package timeutil provides the small time helpers shared by the snapshot
// ingesters, the metrics engine, and the report renderers: parsing the
// "1h 20m 30s" duration strings of the raw exports and formatting seconds
// back into that shape. No external dependencies - uses only standard
// library.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatSeconds renders seconds as the "5h 30m 15s" style the exported
// reports use. Zero is "0s"; leading zero units are dropped.
func FormatSeconds(seconds int) string {
	if seconds == 0 {
		return "0s"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// ParseDurationLabel parses a loose "1h 20m 30s" duration string into
// seconds. Units may be missing ("45m", "2h 5s") and whitespace is
// forgiven; anything unparseable contributes 0. The raw exports never
// carry negative or fractional values, so none are recognized.
func ParseDurationLabel(label string) int {
	total := 0
	for _, field := range strings.Fields(label) {
		if len(field) < 2 {
			continue
		}

		unit := field[len(field)-1]
		value, err := strconv.Atoi(field[:len(field)-1])
		if err != nil || value < 0 {
			continue
		}

		switch unit {
		case 'h':
			total += value * 3600
		case 'm':
			total += value * 60
		case 's':
			total += value
		}
	}
	return total
}

// FormatDuration renders a time.Duration through FormatSeconds.
func FormatDuration(d time.Duration) string {
	return FormatSeconds(int(d.Seconds()))
}

// DateFolder formats a snapshot date the way the export pipeline lays out
// its folders (YY-MM-DD).
func DateFolder(t time.Time) string {
	return t.Format("06-01-02")
}
