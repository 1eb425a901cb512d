package metrics

import (
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEK BUCKETER
// ══════════════════════════════════════════════════════════════════════════════

// Cohort week anchor: April 15 of the implicit year is the start of week 1.
const (
	anchorMonth = time.April
	anchorDay   = 15
)

// monthAbbrevs maps the month abbreviations used in study-history date
// labels. Unknown abbreviations fall back to January, as the legacy
// reports did.
var monthAbbrevs = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// WeekBucketer maps date labels of the form "<month-abbrev> <day>[, <weekday>]"
// onto 1-based cohort week indexes.
//
// The rule is not a general calendar algorithm. Dates on or after the
// anchor bucket into floor(days/7)+1 as expected, but all dates before the
// anchor collapse onto weeks 1-3 by proximity: within 7 days -> week 1,
// within 14 -> week 2, everything earlier -> week 3. The collapse was tuned
// to one cohort's start date and downstream reports depend on it.
type WeekBucketer struct {
	anchor time.Time
}

// NewWeekBucketer creates a bucketer anchored at April 15 of the given
// year. Year 0 means the current year, matching the implicit-year labels.
func NewWeekBucketer(year int) *WeekBucketer {
	if year == 0 {
		year = time.Now().Year()
	}
	return &WeekBucketer{
		anchor: time.Date(year, anchorMonth, anchorDay, 0, 0, 0, 0, time.UTC),
	}
}

// Anchor returns the week-1 anchor date.
func (b *WeekBucketer) Anchor() time.Time {
	return b.anchor
}

// Week returns the cohort week index for a date label. Labels that cannot
// be decomposed into a month abbreviation and a day default to week 1.
func (b *WeekBucketer) Week(dateLabel string) int {
	date, ok := b.parseDate(dateLabel)
	if !ok {
		return 1
	}

	if date.Before(b.anchor) {
		daysBefore := int(b.anchor.Sub(date).Hours() / 24)
		switch {
		case daysBefore <= 7:
			return 1
		case daysBefore <= 14:
			return 2
		default:
			return 3
		}
	}

	daysSince := int(date.Sub(b.anchor).Hours() / 24)
	return daysSince/7 + 1
}

// parseDate decomposes "<month-abbrev> <day>[, <weekday>]" into a date in
// the anchor year. The optional weekday suffix is discarded.
func (b *WeekBucketer) parseDate(dateLabel string) (time.Time, bool) {
	head := dateLabel
	if idx := strings.Index(head, ","); idx >= 0 {
		head = head[:idx]
	}

	parts := strings.Fields(strings.TrimSpace(head))
	if len(parts) != 2 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	month, ok := monthAbbrevs[parts[0]]
	if !ok {
		month = time.January
	}

	return time.Date(b.anchor.Year(), month, day, 0, 0, 0, 0, time.UTC), true
}
