package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hebrewRelativePattern  = regexp.MustCompile(`לפני\s+(\d+)\s+(דקות|שעות|ימים|שבועות)`)
	englishRelativePattern = regexp.MustCompile(`(?i)(\d+)\s+(minute|hour|day|week)s?\s+ago`)

	absoluteLayouts = []string{
		"02/01/2006",
		"02.01.2006",
		"2006-01-02",
	}
)

// ParseRelativeDate converts the source's relative publish phrases ("עכשיו",
// "לפני 3 שעות", "yesterday") into absolute timestamps anchored at now.
// Anything unparseable defaults to now: including a listing with a fuzzy date
// beats dropping it.
func ParseRelativeDate(raw string, now time.Time) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(s, "עכשיו"), strings.Contains(s, "לפני רגע"),
		strings.Contains(lower, "just now"), lower == "now":
		return now
	case strings.Contains(s, "אתמול"), strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1)
	case strings.Contains(s, "לפני דקה"), strings.Contains(lower, "a minute ago"):
		return now.Add(-time.Minute)
	case strings.Contains(s, "לפני שעה"), strings.Contains(lower, "an hour ago"):
		return now.Add(-time.Hour)
	case strings.Contains(s, "לפני יום"):
		return now.AddDate(0, 0, -1)
	case strings.Contains(s, "לפני שבוע"), strings.Contains(lower, "a week ago"):
		return now.AddDate(0, 0, -7)
	}

	if m := hebrewRelativePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "דקות":
			return now.Add(-time.Duration(n) * time.Minute)
		case "שעות":
			return now.Add(-time.Duration(n) * time.Hour)
		case "ימים":
			return now.AddDate(0, 0, -n)
		case "שבועות":
			return now.AddDate(0, 0, -7*n)
		}
	}

	if m := englishRelativePattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute)
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour)
		case "day":
			return now.AddDate(0, 0, -n)
		case "week":
			return now.AddDate(0, 0, -7*n)
		}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return now
}
