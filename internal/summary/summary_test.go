package summary

import (
	"math"
	"testing"

	"teamplanner/internal/model"
)

func TestOrchestrationLine(t *testing.T) {
	r := &model.OrchestrationResult{
		Success:    true,
		Statistics: model.OrchestrationStatistics{AssignmentsMade: 8, UnassignedShifts: 2, ConflictsDetected: 0, Warnings: 1},
	}
	want := "8 assignments made, 2 unassigned shifts, 0 conflicts detected, 1 warning"
	if got := Orchestration(r); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Orchestration(r) != Orchestration(r) {
		t.Fatal("not deterministic")
	}

	r = &model.OrchestrationResult{Statistics: model.OrchestrationStatistics{AssignmentsMade: 1, UnassignedShifts: 1, ConflictsDetected: 1}}
	want = "Orchestration incomplete: 1 assignment made, 1 unassigned shift, 1 conflict detected"
	if got := Orchestration(r); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Orchestration(nil) == "" {
		t.Fatal("nil result should still render")
	}
}

func TestCoverageLine(t *testing.T) {
	a := &model.CoverageAnalysis{Summary: model.CoverageSummary{TotalDays: 7, DaysWithCoverage: 6, DaysWithoutCoverage: 1, CoveragePercentage: 85.714}}
	want := "85.7% coverage (6 of 7 days covered, 1 without coverage)"
	if got := Coverage(a); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Coverage(nil) != "No coverage data" {
		t.Fatalf("nil analysis: %q", Coverage(nil))
	}
}

func TestCoverageLineWithoutSummary(t *testing.T) {
	a := &model.CoverageAnalysis{
		DateRange: model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-18"},
		CoverageByDate: map[string]map[string]model.ShiftCoverage{
			"2024-01-15": {"morning": {TotalShifts: 2, AssignedShifts: 2}},
			"2024-01-16": {"morning": {TotalShifts: 2}, "evening": {TotalShifts: 1, AssignedShifts: 1}},
			"2024-01-17": {"morning": {TotalShifts: 2, UnassignedShifts: 2}},
		},
	}
	want := "50.0% coverage (2 of 4 days covered, 2 without coverage)"
	if got := Coverage(a); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDuration(t *testing.T) {
	cases := map[float64]string{
		0:           "0s",
		-3:          "0s",
		math.NaN():  "0s",
		0.25:        "250ms",
		12.34:       "12.3s",
		59.9:        "59.9s",
		60:          "1m 0s",
		125:         "2m 5s",
		3600:        "1h 0m",
		3840:        "1h 4m",
		2*3600 + 59: "2h 1m",
		0.9996:      "1.0s",
		59.96:       "1m 0s",
		3599.6:      "1h 0m",
	}
	for in, want := range cases {
		if got := Duration(in); got != want {
			t.Fatalf("Duration(%v) = %q, want %q", in, got, want)
		}
	}
}
