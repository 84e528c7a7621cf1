// Package datenorm converts human-written dates into the dd-mm-yyyy form
// expected by the price source.
package datenorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vadiminshakov/nova/internal/domain"
)

// Layout is the canonical output format.
const Layout = "02-01-2006"

var (
	numericSeparators = regexp.MustCompile(`[-/.]`)
	ordinalSuffix     = regexp.MustCompile(`(?i)^(\d{1,2})(st|nd|rd|th)$`)
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Normalize parses ISO, day-first and month-first numeric dates (separators "-", "/" or ".",
// two- or four-digit years) and "<day> <MonthName> <year>" into dd-mm-yyyy.
// Normalize is idempotent on its own output.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", domain.InvalidInputError("empty date")
	}

	var (
		t   time.Time
		err error
	)
	if strings.ContainsAny(s, " \t,") {
		t, err = parseSpelled(s)
	} else {
		t, err = parseNumeric(s)
	}
	if err != nil {
		return "", err
	}

	return t.Format(Layout), nil
}

// Date returns the canonical string for t.
func Date(t time.Time) string {
	return t.Format(Layout)
}

func parseNumeric(s string) (time.Time, error) {
	fields := numericSeparators.Split(s, -1)
	if len(fields) != 3 {
		return time.Time{}, domain.InvalidInputError("date %q must have day, month and year", s)
	}

	nums := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || f == "" {
			return time.Time{}, domain.InvalidInputError("date %q contains a non-numeric field", s)
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case len(fields[0]) == 4:
		year, month, day = nums[0], nums[1], nums[2]
	case len(fields[2]) == 4:
		day, month, year = nums[0], nums[1], nums[2]
	case len(fields[2]) == 2:
		day, month, year = nums[0], nums[1], 2000+nums[2]
	default:
		return time.Time{}, domain.InvalidInputError("date %q has an ambiguous year", s)
	}

	// month-first input such as 12-25-2024
	if len(fields[0]) != 4 && month > 12 && day <= 12 {
		day, month = month, day
	}

	return build(s, year, month, day)
}

func parseSpelled(s string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 3 {
		return time.Time{}, domain.InvalidInputError("date %q must have day, month and year", s)
	}

	dayField, monthField := fields[0], fields[1]
	// "December 1 2024"
	if _, ok := months[strings.ToLower(dayField)]; ok {
		dayField, monthField = monthField, dayField
	}
	if m := ordinalSuffix.FindStringSubmatch(dayField); m != nil {
		dayField = m[1]
	}
	day, err := strconv.Atoi(dayField)
	if err != nil {
		return time.Time{}, domain.InvalidInputError("invalid day in date %q", s)
	}

	month, ok := months[strings.ToLower(monthField)]
	if !ok {
		return time.Time{}, domain.InvalidInputError("unrecognized month name in date %q", s)
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, domain.InvalidInputError("invalid year in date %q", s)
	}
	if len(fields[2]) == 2 {
		year += 2000
	}

	return build(s, year, int(month), day)
}

func build(raw string, year, month, day int) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, domain.InvalidInputError("day out of range in date %q", raw)
	}
	if month < 1 || month > 12 {
		return time.Time{}, domain.InvalidInputError("month out of range in date %q", raw)
	}
	if year < 1 {
		return time.Time{}, domain.InvalidInputError("year out of range in date %q", raw)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 April becomes 1 May), reject that instead
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, domain.InvalidInputError("date %q does not exist", raw)
	}

	return t, nil
}
