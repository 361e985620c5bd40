package model

// Wire types exchanged with the orchestration backend.

type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.StartDate == "" && r.EndDate == "" }

type OrchestrationOptions struct {
	DryRun bool `json:"dry_run,omitempty"`
	Force  bool `json:"force,omitempty"`
}

type OrchestrationRequest struct {
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	DepartmentID string               `json:"department_id,omitempty"`
	Options      OrchestrationOptions `json:"options"`
}

type OrchestrationStatistics struct {
	AssignmentsMade   int `json:"assignments_made"`
	UnassignedShifts  int `json:"unassigned_shifts"`
	ConflictsDetected int `json:"conflicts_detected"`
	Warnings          int `json:"warnings"`
}

// OrchestrationResult is the outcome of one orchestration run. It is never
// mutated after decoding; the state store shares pointers to it.
type OrchestrationResult struct {
	Success       bool                    `json:"success"`
	Statistics    OrchestrationStatistics `json:"statistics"`
	Assignments   []Assignment            `json:"assignments"`
	Conflicts     []Conflict              `json:"conflicts"`
	Warnings      []string                `json:"warnings"`
	ExecutionTime *float64                `json:"execution_time,omitempty"`
}

type Assignment struct {
	AssignmentID  string `json:"assignment_id"`
	ShiftID       string `json:"shift_id"`
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name,omitempty"`
	AutoAssigned  bool   `json:"auto_assigned"`
	ShiftType     string `json:"shift_type"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
}

type ConflictType string

const (
	ConflictLeave            ConflictType = "leave_conflict"
	ConflictAvailability     ConflictType = "availability_conflict"
	ConflictRestPeriod       ConflictType = "rest_period_violation"
	ConflictConsecutiveWeeks ConflictType = "consecutive_weeks_violation"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Conflict struct {
	ConflictID  string       `json:"conflict_id"`
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	ShiftID     string       `json:"shift_id"`
	EmployeeID  string       `json:"employee_id"`
	Severity    Severity     `json:"severity"`
}

// Shift types understood by the availability endpoint.
const (
	ShiftTypeIncident   = "incident"
	ShiftTypeWaakdienst = "waakdienst"
)

type CoverageParams struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DepartmentID string `json:"department_id,omitempty"`
}

type ShiftCoverage struct {
	TotalShifts      int          `json:"total_shifts"`
	AssignedShifts   int          `json:"assigned_shifts"`
	UnassignedShifts int          `json:"unassigned_shifts"`
	Assignments      []Assignment `json:"assignments"`
}

type CoverageSummary struct {
	TotalDays           int     `json:"total_days"`
	DaysWithCoverage    int     `json:"days_with_coverage"`
	DaysWithoutCoverage int     `json:"days_without_coverage"`
	CoveragePercentage  float64 `json:"coverage_percentage"`
}

type CoverageAnalysis struct {
	DateRange      DateRange                           `json:"date_range"`
	CoverageByDate map[string]map[string]ShiftCoverage `json:"coverage_by_date"`
	Summary        CoverageSummary                     `json:"summary"`
}

type AvailabilityParams struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	ShiftType    string `json:"shift_type,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

type EmployeeAvailability struct {
	EmployeeID              string   `json:"employee_id"`
	Name                    string   `json:"name"`
	Email                   string   `json:"email"`
	AvailableForIncidents   bool     `json:"available_for_incidents"`
	AvailableForWaakdienst  bool     `json:"available_for_waakdienst"`
	CurrentAssignmentsCount int      `json:"current_assignments_count"`
	FairnessScore           *float64 `json:"fairness_score,omitempty"`
	LastAssignmentDate      string   `json:"last_assignment_date,omitempty"`
}

type AvailabilityResponse struct {
	TimeRange          DateRange              `json:"time_range"`
	ShiftType          string                 `json:"shift_type,omitempty"`
	AvailableEmployees []EmployeeAvailability `json:"available_employees"`
	TotalAvailable     int                    `json:"total_available"`
}

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthComponents struct {
	Database     HealthStatus `json:"database"`
	Orchestrator HealthStatus `json:"orchestrator"`
	Cache        HealthStatus `json:"cache"`
}

type SystemHealth struct {
	Status         HealthStatus     `json:"status"`
	Timestamp      string           `json:"timestamp"`
	Version        string           `json:"version"`
	Components     HealthComponents `json:"components"`
	ResponseTimeMs *float64         `json:"response_time_ms,omitempty"`
}

// SystemMetrics holds counters over a trailing window (30 days by default).
type SystemMetrics struct {
	Timestamp      string             `json:"timestamp"`
	PeriodDays     int                `json:"period_days"`
	Orchestrations OrchestrationStats `json:"orchestrations"`
	Assignments    AssignmentStats    `json:"assignments"`
	Coverage       CoverageStats      `json:"coverage"`
}

type OrchestrationStats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

type AssignmentStats struct {
	Total              int     `json:"total"`
	AutoAssigned       int     `json:"auto_assigned"`
	Manual             int     `json:"manual"`
	AutoAssignmentRate float64 `json:"auto_assignment_rate"`
}

type CoverageStats struct {
	TotalShifts        int     `json:"total_shifts"`
	AssignedShifts     int     `json:"assigned_shifts"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// UserPermissions is returned by the permission lookup and held by the permission cache.
type UserPermissions struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
