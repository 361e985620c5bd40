package state

import (
	"teamplanner/internal/model"
	"teamplanner/internal/summary"
)

// Selectors derive UI flags from a snapshot. None of them mutate.

func IsRunning(s State) bool { return s.OrchestrationStatus == StatusRunning }

func IsSuccess(s State) bool { return s.OrchestrationStatus == StatusSuccess }

func HasError(s State) bool { return s.Error != "" }

// HasResults reports whether any orchestration run has completed.
func HasResults(s State) bool { return s.LastOrchestration != nil }

// IsAnyLoading is true while any interactive operation is in flight.
func IsAnyLoading(s State) bool { return s.Loading || s.CoverageLoading || s.AvailabilityLoading }

func IsSystemHealthy(s State) bool {
	return s.SystemHealth != nil && s.SystemHealth.Status == model.HealthHealthy
}

func IsSystemDegraded(s State) bool {
	return s.SystemHealth != nil && s.SystemHealth.Status != model.HealthHealthy
}

// LatestSummary renders the last run, or "" if there is none.
func LatestSummary(s State) string {
	if s.LastOrchestration == nil {
		return ""
	}
	return summary.Orchestration(s.LastOrchestration)
}

// CoverageSummary renders the cached coverage analysis, or "".
func CoverageSummary(s State) string {
	if s.CoverageData == nil {
		return ""
	}
	return summary.Coverage(s.CoverageData)
}

// Flags bundles the derived booleans for transport to a UI.
type Flags struct {
	IsRunning        bool   `json:"isRunning"`
	IsSuccess        bool   `json:"isSuccess"`
	HasError         bool   `json:"hasError"`
	HasResults       bool   `json:"hasResults"`
	IsAnyLoading     bool   `json:"isAnyLoading"`
	IsSystemHealthy  bool   `json:"isSystemHealthy"`
	IsSystemDegraded bool   `json:"isSystemDegraded"`
	LatestSummary    string `json:"latestSummary,omitempty"`
	CoverageSummary  string `json:"coverageSummary,omitempty"`
}

func Derive(s State) Flags {
	return Flags{
		IsRunning:        IsRunning(s),
		IsSuccess:        IsSuccess(s),
		HasError:         HasError(s),
		HasResults:       HasResults(s),
		IsAnyLoading:     IsAnyLoading(s),
		IsSystemHealthy:  IsSystemHealthy(s),
		IsSystemDegraded: IsSystemDegraded(s),
		LatestSummary:    LatestSummary(s),
		CoverageSummary:  CoverageSummary(s),
	}
}
