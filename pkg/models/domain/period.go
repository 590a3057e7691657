package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

const dateLayout = "2006-01-02"

// Period represents a named, inclusive date range for the report
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

// NewPeriod creates a period, rejecting ranges that end before they start
func NewPeriod(name string, start, end time.Time) (Period, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: %q ends %s before it starts %s",
			ErrInvalidPeriod, name, end.Format(dateLayout), start.Format(dateLayout))
	}
	return Period{Name: name, Start: start, End: end}, nil
}

// MustPeriod parses two YYYY-MM-DD dates and panics on error. Intended for tests and fixtures.
func MustPeriod(name, start, end string) Period {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		panic(err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		panic(err)
	}
	p, err := NewPeriod(name, s, e)
	if err != nil {
		panic(err)
	}
	return p
}

// Days returns the inclusive day count of the period
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

func (p Period) String() string {
	return fmt.Sprintf("%s (%s to %s)", p.Name, p.Start.Format(dateLayout), p.End.Format(dateLayout))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
