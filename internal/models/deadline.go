package models

import (
	"fmt"
	"time"
)

// DeadlineParts is a deadline as picked from separate year, month and day selections.
type DeadlineParts struct {
	Year  int
	Month int
	Day   int
}

// Date assembles the parts into a calendar date at UTC midnight. Combinations that
// time.Date would normalize (Feb 30 becoming Mar 2) are rejected with ErrInvalidDate.
func (d DeadlineParts) Date() (time.Time, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Year < 1 {
		return time.Time{}, fmt.Errorf("%04d-%02d-%02d: %w", d.Year, d.Month, d.Day, ErrInvalidDate)
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return time.Time{}, fmt.Errorf("%04d-%02d-%02d: %w", d.Year, d.Month, d.Day, ErrInvalidDate)
	}
	return t, nil
}

func DeadlinePartsOf(t time.Time) DeadlineParts {
	return DeadlineParts{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
