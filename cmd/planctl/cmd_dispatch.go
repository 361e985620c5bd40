package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"teamplanner/internal/apierr"
	"teamplanner/internal/daterange"
	"teamplanner/internal/model"
	"teamplanner/internal/summary"
)

// rangeFlags are shared by the commands that take a date window.
type rangeFlags struct {
	week       string
	start      string
	end        string
	department string
}

func (f *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.week, "week", "current", "Week to target: current or next (ignored when --start/--end are set)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.department, "department", "", "Restrict to a department ID")
}

func (f *rangeFlags) resolve(now time.Time) (model.DateRange, error) {
	if f.start != "" || f.end != "" {
		return daterange.Custom(f.start, f.end)
	}
	switch f.week {
	case "current":
		return daterange.CurrentWeek(now), nil
	case "next":
		return daterange.NextWeek(now), nil
	default:
		return model.DateRange{}, &apierr.ValidationError{Field: "week", Reason: "must be current or next"}
	}
}

var outputJSON bool

var (
	scheduleRange  rangeFlags
	scheduleDryRun bool
	scheduleForce  bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the orchestrator for a date range",
	Long: `Submit a scheduling run to the orchestration engine.

Examples:
  # Preview next week's assignments without saving them
  planctl schedule --week next --dry-run

  # Run for an explicit window and overwrite existing assignments
  planctl schedule --start 2024-01-15 --end 2024-01-21 --force
`,
	RunE: runSchedule,
}

var coverageRange rangeFlags

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show shift coverage for a date range",
	RunE:  runCoverage,
}

var (
	availabilityRange rangeFlags
	availabilityShift string
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "List employees available for a shift type",
	RunE:  runAvailability,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show orchestration engine health",
	RunE:  runHealth,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show orchestration engine metrics",
	RunE:  runMetrics,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print raw JSON responses")

	scheduleRange.bind(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&scheduleDryRun, "dry-run", false, "Compute assignments without saving them")
	scheduleCmd.Flags().BoolVar(&scheduleForce, "force", false, "Overwrite existing assignments")
	coverageRange.bind(coverageCmd)
	availabilityRange.bind(availabilityCmd)
	availabilityCmd.Flags().StringVar(&availabilityShift, "shift-type", "", "incident or waakdienst")

	rootCmd.AddCommand(scheduleCmd, coverageCmd, availabilityCmd, healthCmd, metricsCmd)
}

// commandContext cancels on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	dr, err := scheduleRange.resolve(time.Now())
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := a.dispatcher.ScheduleOrchestration(ctx, model.OrchestrationRequest{
		StartDate:    dr.StartDate,
		EndDate:      dr.EndDate,
		DepartmentID: scheduleRange.department,
		Options:      model.OrchestrationOptions{DryRun: scheduleDryRun, Force: scheduleForce},
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "%s to %s: %s\n", dr.StartDate, dr.EndDate, summary.Orchestration(res))
	if res.ExecutionTime != nil {
		fmt.Fprintf(out, "took %s\n", summary.Duration(*res.ExecutionTime))
	}
	for _, c := range res.Conflicts {
		fmt.Fprintf(out, "  [%s] %s: %s\n", c.Severity, c.Type, c.Description)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}

func runCoverage(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	dr, err := coverageRange.resolve(time.Now())
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := a.dispatcher.GetCoverage(ctx, model.CoverageParams{StartDate: dr.StartDate, EndDate: dr.EndDate, DepartmentID: coverageRange.department})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "%s to %s: %s\n", dr.StartDate, dr.EndDate, summary.Coverage(res))
	return nil
}

func runAvailability(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	dr, err := availabilityRange.resolve(time.Now())
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := a.dispatcher.GetAvailability(ctx, model.AvailabilityParams{
		StartDate: dr.StartDate, EndDate: dr.EndDate, ShiftType: availabilityShift, DepartmentID: availabilityRange.department,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tNAME\tINCIDENTS\tWAAKDIENST\tASSIGNMENTS")
	for _, e := range res.AvailableEmployees {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%d\n", e.EmployeeID, e.Name, e.AvailableForIncidents, e.AvailableForWaakdienst, e.CurrentAssignmentsCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d available\n", res.TotalAvailable)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := a.dispatcher.RefreshSystemHealth(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "status: %s (version %s)\n", res.Status, res.Version)
	fmt.Fprintf(out, "  database: %s\n  orchestrator: %s\n  cache: %s\n", res.Components.Database, res.Components.Orchestrator, res.Components.Cache)
	return nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := a.dispatcher.RefreshMetrics(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "last %d days\n", res.PeriodDays)
	fmt.Fprintf(out, "  orchestrations: %d total, %d failed, %.1f%% success\n", res.Orchestrations.Total, res.Orchestrations.Failed, res.Orchestrations.SuccessRate)
	fmt.Fprintf(out, "  assignments: %d total, %.1f%% automatic\n", res.Assignments.Total, res.Assignments.AutoAssignmentRate)
	fmt.Fprintf(out, "  coverage: %d of %d shifts, %.1f%%\n", res.Coverage.AssignedShifts, res.Coverage.TotalShifts, res.Coverage.CoveragePercentage)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
