// Package daterange computes the calendar ranges offered by the scheduling
// forms. Weeks start on Monday and span seven days inclusive.
package daterange

import (
	"strings"
	"time"

	"teamplanner/internal/apierr"
	"teamplanner/internal/model"
)

// Layout is the ISO calendar date format used on the wire.
const Layout = "2006-01-02"

var lenientLayouts = []string{Layout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// CurrentWeek returns the Monday..Sunday window containing now.
func CurrentWeek(now time.Time) model.DateRange {
	return week(weekStart(now))
}

// NextWeek returns the window following CurrentWeek.
func NextWeek(now time.Time) model.DateRange {
	return week(weekStart(now).AddDate(0, 0, 7))
}

// Custom normalizes start and end to ISO date strings. Time components and
// offsets are dropped; start must not be after end as calendar dates.
func Custom(start, end string) (model.DateRange, error) {
	s, err := parseLenient("start_date", start)
	if err != nil {
		return model.DateRange{}, err
	}
	e, err := parseLenient("end_date", end)
	if err != nil {
		return model.DateRange{}, err
	}
	if s.After(e) {
		return model.DateRange{}, &apierr.ValidationError{Field: "start_date", Reason: "must not be after end_date"}
	}
	return model.DateRange{StartDate: s.Format(Layout), EndDate: e.Format(Layout)}, nil
}

// ParseDate parses a strict YYYY-MM-DD value.
func ParseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, &apierr.ValidationError{Field: field, Reason: "is required"}
	}
	t, err := time.Parse(Layout, v)
	if err != nil {
		return time.Time{}, &apierr.ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return t, nil
}

// Validate checks that r holds two ISO dates in order.
func Validate(r model.DateRange) error {
	s, err := ParseDate("start_date", r.StartDate)
	if err != nil {
		return err
	}
	e, err := ParseDate("end_date", r.EndDate)
	if err != nil {
		return err
	}
	if s.After(e) {
		return &apierr.ValidationError{Field: "start_date", Reason: "must not be after end_date"}
	}
	return nil
}

// Days returns the inclusive number of days in r, or 0 if r is invalid.
func Days(r model.DateRange) int {
	if Validate(r) != nil {
		return 0
	}
	s, _ := time.Parse(Layout, r.StartDate)
	e, _ := time.Parse(Layout, r.EndDate)
	return int(e.Sub(s).Hours()/24) + 1
}

func parseLenient(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, &apierr.ValidationError{Field: field, Reason: "is required"}
	}
	for _, l := range lenientLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return midnight(t), nil
		}
	}
	return time.Time{}, &apierr.ValidationError{Field: field, Reason: "unrecognized date " + v}
}

func weekStart(now time.Time) time.Time {
	d := midnight(now)
	// Sunday is 0; shift so Monday is the first day.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func week(monday time.Time) model.DateRange {
	return model.DateRange{StartDate: monday.Format(Layout), EndDate: monday.AddDate(0, 0, 6).Format(Layout)}
}

// midnight keeps the calendar date of t as seen in t's own zone, pinned to UTC
// so dates from different offsets compare by day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
