// Package dateutils parses the date text found in Spanish bank exports.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutISO = "2006-01-02"
	DateLayoutOFX = "20060102"
)

// dayFirstLayouts are tried in order. Ambiguous DD/MM vs MM/DD input always
// resolves day-first; there is deliberately no MM/DD layout here.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	DateLayoutISO,
	"2006/01/02",
	"2006.01.02",
	DateLayoutOFX,
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"15:04:05.999999999",
}

var multiSpace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace, including non-breaking spaces.
func CleanDateString(dateStr string) string {
	dateStr = strings.ReplaceAll(dateStr, "\u00a0", " ")
	return multiSpace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDayFirst parses dateStr with day-first interpretation, so "05/03/2024"
// is the 5th of March. An optional clock suffix ("10:30", "10:30:00") is
// accepted after a space or 'T'.
func ParseDayFirst(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(time.RFC3339, clean); err == nil {
		return t, nil
	}

	datePart, clockPart := clean, ""
	if i := strings.IndexAny(clean, " T"); i > 0 {
		datePart, clockPart = clean[:i], strings.TrimSpace(clean[i+1:])
	}

	var day time.Time
	found := false
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			day, found = t, true
			break
		}
	}
	if !found {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
	}
	if clockPart == "" {
		return day, nil
	}

	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, clockPart); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time of day in date: %s", dateStr)
}

// ToOFXDate formats date as YYYYMMDD.
func ToOFXDate(date time.Time) string {
	return date.Format(DateLayoutOFX)
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
