// Package summary renders orchestration and coverage results as one-line text.
package summary

import (
	"fmt"
	"math"

	"teamplanner/internal/daterange"
	"teamplanner/internal/model"
)

// Orchestration describes a completed run from its statistics.
func Orchestration(r *model.OrchestrationResult) string {
	if r == nil {
		return "No orchestration results"
	}
	st := r.Statistics
	line := fmt.Sprintf("%s made, %s, %s detected",
		plural(st.AssignmentsMade, "assignment", "assignments"),
		plural(st.UnassignedShifts, "unassigned shift", "unassigned shifts"),
		plural(st.ConflictsDetected, "conflict", "conflicts"))
	if st.Warnings > 0 {
		line += ", " + plural(st.Warnings, "warning", "warnings")
	}
	if !r.Success {
		line = "Orchestration incomplete: " + line
	}
	return line
}

// Coverage describes a coverage analysis from its summary block. When the
// backend sends no summary it is derived from the date range and per-day data.
func Coverage(a *model.CoverageAnalysis) string {
	if a == nil {
		return "No coverage data"
	}
	s := a.Summary
	if s.TotalDays == 0 {
		s = deriveCoverage(a)
	}
	return fmt.Sprintf("%.1f%% coverage (%d of %s covered, %d without coverage)",
		s.CoveragePercentage, s.DaysWithCoverage, plural(s.TotalDays, "day", "days"), s.DaysWithoutCoverage)
}

// Duration formats a number of seconds for display: 850ms, 12.3s, 2m 5s, 1h 4m.
// Values are rounded before the unit is chosen, so 59.96 reads 1m 0s.
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "0s"
	}
	if ms := math.Round(seconds * 1000); ms < 1000 {
		return fmt.Sprintf("%dms", int(ms))
	}
	if tenths := math.Round(seconds*10) / 10; tenths < 60 {
		return fmt.Sprintf("%.1fs", tenths)
	}
	if total := int(math.Round(seconds)); total < 3600 {
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	}
	total := int(math.Round(seconds / 60))
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

func deriveCoverage(a *model.CoverageAnalysis) model.CoverageSummary {
	s := model.CoverageSummary{TotalDays: daterange.Days(a.DateRange)}
	for _, shifts := range a.CoverageByDate {
		for _, sc := range shifts {
			if sc.AssignedShifts > 0 {
				s.DaysWithCoverage++
				break
			}
		}
	}
	if s.DaysWithCoverage > s.TotalDays {
		s.TotalDays = s.DaysWithCoverage
	}
	s.DaysWithoutCoverage = s.TotalDays - s.DaysWithCoverage
	if s.TotalDays > 0 {
		s.CoveragePercentage = float64(s.DaysWithCoverage) * 100 / float64(s.TotalDays)
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
