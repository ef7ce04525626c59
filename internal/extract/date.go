package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DayPreference picks the day used when a date names only a month and year.
type DayPreference int

// Day preferences.
const (
	PreferFirstDay DayPreference = iota
	PreferLastDay
)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	weekdayPrefix = regexp.MustCompile(`(?i)^(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+`)
	zoneSuffix    = regexp.MustCompile(`(?i)\s+(?:[ecmp][sd]?t|eastern|central|mountain|pacific)(?:\s+time)?\.?$`)
	atWord        = regexp.MustCompile(`(?i)\s+at\s+`)
	meridiem      = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m\b\.?`)
)

var monthYearLayouts = []string{
	"January 2006",
	"January, 2006",
	"Jan 2006",
	"Jan. 2006",
	"01/2006",
	"1/2006",
}

var dateLayouts = []string{
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"01/02/2006 3:04 PM",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006-01-02",
}

// ParseDate parses a free-form date as printed on listing sites and
// returns it in UTC. It returns nil when raw is empty or unrecognized.
func ParseDate(raw string, prefer DayPreference) *time.Time {
	s := cleanDate(raw)
	if s == "" {
		return nil
	}

	for _, layout := range monthYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if prefer == PreferLastDay {
				t = t.AddDate(0, 1, -1)
			}
			return &t
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func cleanDate(raw string) string {
	s := Text(raw)
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = meridiem.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiem.FindStringSubmatch(m)
		return sub[1] + " " + strings.ToUpper(sub[2]) + "M"
	})
	s = atWord.ReplaceAllString(s, " ")
	s = zoneSuffix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ". ")
	return s
}
