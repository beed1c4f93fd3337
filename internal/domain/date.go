package domain

import (
	"regexp"
	"strconv"
	"time"

	"github.com/HendryAvila/foreman/internal/apperr"
)

const (
	// DisplayLayout is the only accepted input format and the display format.
	DisplayLayout = "02.01.2006"
	// StoreLayout is the persisted and compared format.
	StoreLayout = "2006-01-02"
	// DateHint describes the accepted input format in error messages.
	DateHint = "dd.mm.yyyy (for example 05.03.2025)"

	minYear = 1900
	maxYear = 2100
)

var datePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// ParseDate parses a dd.mm.yyyy date. Any other shape, an out-of-range
// component or a day that does not exist in the month is rejected.
func ParseDate(text string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, invalidDate(text)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if day < 1 || day > 31 || month < 1 || month > 12 || year < minYear || year > maxYear {
		return time.Time{}, invalidDate(text)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02 into March.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, invalidDate(text)
	}
	return t, nil
}

// FormatDate renders a date as dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// FormatDatePtr renders an optional date, a dash when absent.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return FormatDate(*t)
}

// StoreDate renders a date as yyyy-mm-dd.
func StoreDate(t time.Time) string {
	return t.Format(StoreLayout)
}

// ParseStoredDate parses a persisted yyyy-mm-dd date.
func ParseStoredDate(s string) (time.Time, error) {
	return time.ParseInLocation(StoreLayout, s, time.UTC)
}

// ValidateRange passes when either bound is absent, otherwise requires
// start <= end.
func ValidateRange(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if start.After(*end) {
		return apperr.InvertedRange()
	}
	return nil
}

func invalidDate(text string) error {
	return apperr.InvalidFormat("date", text, DateHint)
}
