package daterange

import (
	"errors"
	"testing"
	"time"

	"teamplanner/internal/apierr"
	"teamplanner/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(Layout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(15 * time.Hour)
}

func TestCurrentAndNextWeekAnchorOnMonday(t *testing.T) {
	cases := []struct {
		today     string
		cur, next model.DateRange
	}{
		// Wednesday
		{"2024-01-17", model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-21"}, model.DateRange{StartDate: "2024-01-22", EndDate: "2024-01-28"}},
		// Monday
		{"2024-01-15", model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-21"}, model.DateRange{StartDate: "2024-01-22", EndDate: "2024-01-28"}},
		// Sunday belongs to the week that started the previous Monday
		{"2024-01-21", model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-21"}, model.DateRange{StartDate: "2024-01-22", EndDate: "2024-01-28"}},
		// crosses a year boundary
		{"2024-12-31", model.DateRange{StartDate: "2024-12-30", EndDate: "2025-01-05"}, model.DateRange{StartDate: "2025-01-06", EndDate: "2025-01-12"}},
	}
	for _, tc := range cases {
		now := day(tc.today)
		if got := CurrentWeek(now); got != tc.cur {
			t.Fatalf("CurrentWeek(%s) = %+v, want %+v", tc.today, got, tc.cur)
		}
		if got := NextWeek(now); got != tc.next {
			t.Fatalf("NextWeek(%s) = %+v, want %+v", tc.today, got, tc.next)
		}
	}
}

func TestCurrentWeekIsPure(t *testing.T) {
	now := day("2024-03-06")
	a, b := CurrentWeek(now), CurrentWeek(now)
	if a != b {
		t.Fatalf("same input gave %+v and %+v", a, b)
	}
	if Days(a) != 7 {
		t.Fatalf("week should span 7 days, got %d", Days(a))
	}
}

func TestCustomNormalizes(t *testing.T) {
	r, err := Custom("2024-01-15T08:30:00Z", " 2024-01-21 ")
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	if r.StartDate != "2024-01-15" || r.EndDate != "2024-01-21" {
		t.Fatalf("unexpected range %+v", r)
	}
	same, err := Custom("2024-02-01", "2024-02-01")
	if err != nil || Days(same) != 1 {
		t.Fatalf("single-day range: %+v %v", same, err)
	}
	// same calendar day written with different offsets
	mixed := [][2]string{
		{"2024-01-15", "2024-01-15T10:00:00+05:00"},
		{"2024-01-15T10:00:00-08:00", "2024-01-15"},
		{"2024-01-15T23:30:00-08:00", "2024-01-15T00:30:00+09:00"},
	}
	for _, in := range mixed {
		r, err := Custom(in[0], in[1])
		if err != nil {
			t.Fatalf("Custom(%q, %q): %v", in[0], in[1], err)
		}
		if r != (model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-15"}) {
			t.Fatalf("Custom(%q, %q) = %+v", in[0], in[1], r)
		}
	}
}

func TestCustomRejectsInvertedAndGarbage(t *testing.T) {
	var ve *apierr.ValidationError
	if _, err := Custom("2024-01-22", "2024-01-21"); !errors.As(err, &ve) {
		t.Fatalf("inverted range: expected ValidationError, got %v", err)
	}
	if _, err := Custom("", "2024-01-21"); !errors.As(err, &ve) || ve.Field != "start_date" {
		t.Fatalf("missing start: expected ValidationError on start_date, got %v", err)
	}
	if _, err := Custom("2024-01-01", "next tuesday"); !errors.As(err, &ve) || ve.Field != "end_date" {
		t.Fatalf("garbage end: expected ValidationError on end_date, got %v", err)
	}
}

func TestValidateIsStrict(t *testing.T) {
	if err := Validate(model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-21"}); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := Validate(model.DateRange{StartDate: "2024-01-15T00:00:00Z", EndDate: "2024-01-21"}); err == nil {
		t.Fatal("time component should be rejected by strict validation")
	}
	if err := Validate(model.DateRange{StartDate: "2024-01-22", EndDate: "2024-01-21"}); err == nil {
		t.Fatal("inverted range accepted")
	}
	if Days(model.DateRange{StartDate: "bad", EndDate: "2024-01-21"}) != 0 {
		t.Fatal("Days of invalid range should be 0")
	}
}
