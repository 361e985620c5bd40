package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"teamplanner/internal/apierr"
	"teamplanner/internal/events"
	"teamplanner/internal/model"
	"teamplanner/internal/state"
)

func TestRangeFlagsResolve(t *testing.T) {
	wed := time.Date(2024, 1, 17, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		flags     rangeFlags
		wantStart string
		wantEnd   string
	}{
		{rangeFlags{week: "current"}, "2024-01-15", "2024-01-21"},
		{rangeFlags{week: "next"}, "2024-01-22", "2024-01-28"},
		{rangeFlags{week: "next", start: "2024-02-01", end: "2024-02-03"}, "2024-02-01", "2024-02-03"},
	}
	for _, tc := range cases {
		got, err := tc.flags.resolve(wed)
		if err != nil {
			t.Fatalf("%+v: %v", tc.flags, err)
		}
		if got.StartDate != tc.wantStart || got.EndDate != tc.wantEnd {
			t.Fatalf("%+v: got %+v", tc.flags, got)
		}
	}
	var ve *apierr.ValidationError
	if _, err := (&rangeFlags{week: "later"}).resolve(wed); !errors.As(err, &ve) {
		t.Fatalf("bad week should be a validation error, got %v", err)
	}
	if _, err := (&rangeFlags{start: "2024-02-03", end: "2024-02-01"}).resolve(wed); !errors.As(err, &ve) {
		t.Fatalf("inverted range should be a validation error, got %v", err)
	}
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	st := state.State{SystemHealth: &model.SystemHealth{Status: model.HealthDegraded, Version: "2.1"}}
	printEvent(&buf, events.Event{Type: "health.success", TS: "t1"}, st)
	printEvent(&buf, events.Event{Type: "coverage.failure", TS: "t2", Data: map[string]any{"error": "Failed to get coverage analysis"}}, st)
	printEvent(&buf, events.Event{Type: "metrics.success", TS: "t3"}, st)
	out := buf.String()
	for _, want := range []string{"t1 health degraded (version 2.1)", "t2 coverage.failure", "error: Failed to get coverage analysis", "t3 metrics.success"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
