package postprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var datePattern = regexp.MustCompile(`^\s*(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\s*$`)

// DateCheck is the outcome of validating a DD/MM/YYYY value.
type DateCheck struct {
	Valid bool
	Fixed string
	Year  int
	Error string
}

// ValidateDate checks format, ranges and that the day exists in the calendar.
func ValidateDate(value, label string) DateCheck {
	if value == "" {
		return DateCheck{Error: label + " is missing"}
	}
	m := datePattern.FindStringSubmatch(value)
	if m == nil {
		return DateCheck{Error: label + " format invalid, expected DD/MM/YYYY"}
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	switch {
	case month < 1 || month > 12:
		return DateCheck{Error: fmt.Sprintf("Invalid month: %d", month)}
	case day < 1 || day > 31:
		return DateCheck{Error: fmt.Sprintf("Invalid day: %d", day)}
	case year < 1900 || year > 2100:
		return DateCheck{Error: fmt.Sprintf("Invalid year: %d", year)}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return DateCheck{Error: fmt.Sprintf("Date does not exist: %d/%d/%d", day, month, year)}
	}
	return DateCheck{
		Valid: true,
		Fixed: fmt.Sprintf("%02d/%02d/%04d", day, month, year),
		Year:  year,
	}
}
