// Package orchestrator dispatches backend operations and drives the state
// store through their pending/success/failure transitions. It is the only
// writer of the store.
package orchestrator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"teamplanner/internal/apierr"
	"teamplanner/internal/backend"
	"teamplanner/internal/daterange"
	"teamplanner/internal/metrics"
	"teamplanner/internal/model"
	"teamplanner/internal/state"
)

// Fallback messages used when the backend supplies neither message nor detail.
const (
	MsgSchedule     = "Failed to schedule orchestration"
	MsgCoverage     = "Failed to get coverage analysis"
	MsgAvailability = "Failed to get employee availability"
	MsgHealth       = "Failed to get system health"
	MsgMetrics      = "Failed to get system metrics"
)

type Dispatcher struct {
	client backend.Client
	store  *state.Store
	logger zerolog.Logger
}

func NewDispatcher(client backend.Client, store *state.Store, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{client: client, store: store, logger: logger.With().Str("component", "dispatcher").Logger()}
}

// Snapshot returns the current coordinator state.
func (d *Dispatcher) Snapshot() state.State { return d.store.Snapshot() }

// ScheduleOrchestration validates req, runs it on the backend and records the outcome.
// Invalid requests fail with *apierr.ValidationError before any state change.
func (d *Dispatcher) ScheduleOrchestration(ctx context.Context, req model.OrchestrationRequest) (*model.OrchestrationResult, error) {
	if err := daterange.Validate(model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate}); err != nil {
		return nil, d.invalid(state.KindSchedule, err)
	}
	d.store.ApplyPending(state.KindSchedule)
	res, err := d.client.Schedule(ctx, req)
	if err == nil && res == nil {
		err = errors.New("empty orchestration result")
	}
	if err != nil {
		return nil, d.fail(state.KindSchedule, MsgSchedule, err, true)
	}
	d.store.ApplySuccess(state.KindSchedule, res)
	d.succeeded(state.KindSchedule)
	d.logger.Info().Str("start_date", req.StartDate).Str("end_date", req.EndDate).Bool("dry_run", req.Options.DryRun).
		Int("assignments_made", res.Statistics.AssignmentsMade).Int("conflicts", res.Statistics.ConflictsDetected).
		Msg("orchestration completed")
	return res, nil
}

// GetCoverage fetches a coverage analysis. Only CoverageLoading is toggled.
func (d *Dispatcher) GetCoverage(ctx context.Context, p model.CoverageParams) (*model.CoverageAnalysis, error) {
	if err := daterange.Validate(model.DateRange{StartDate: p.StartDate, EndDate: p.EndDate}); err != nil {
		return nil, d.invalid(state.KindCoverage, err)
	}
	d.store.ApplyPending(state.KindCoverage)
	res, err := d.client.Coverage(ctx, p)
	if err == nil && res == nil {
		err = errors.New("empty coverage analysis")
	}
	if err != nil {
		return nil, d.fail(state.KindCoverage, MsgCoverage, err, true)
	}
	d.store.ApplySuccess(state.KindCoverage, res)
	d.succeeded(state.KindCoverage)
	return res, nil
}

// GetAvailability fetches available employees. Only AvailabilityLoading is toggled.
// Overlapping calls are not sequenced: whichever response arrives last wins.
func (d *Dispatcher) GetAvailability(ctx context.Context, p model.AvailabilityParams) (*model.AvailabilityResponse, error) {
	if err := validateAvailability(p); err != nil {
		return nil, d.invalid(state.KindAvailability, err)
	}
	d.store.ApplyPending(state.KindAvailability)
	res, err := d.client.Availability(ctx, p)
	if err == nil && res == nil {
		err = errors.New("empty availability response")
	}
	if err != nil {
		return nil, d.fail(state.KindAvailability, MsgAvailability, err, true)
	}
	d.store.ApplySuccess(state.KindAvailability, res)
	d.succeeded(state.KindAvailability)
	return res, nil
}

// RefreshSystemHealth fetches the health snapshot. A failure sets Error but no loading flag.
func (d *Dispatcher) RefreshSystemHealth(ctx context.Context) (*model.SystemHealth, error) {
	return d.health(ctx, true)
}

// RefreshMetrics fetches the metrics snapshot. A failure sets Error but no loading flag.
func (d *Dispatcher) RefreshMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	return d.metrics(ctx, true)
}

// PollHealth is the background variant of RefreshSystemHealth: success is
// recorded, failure is only returned.
func (d *Dispatcher) PollHealth(ctx context.Context) error {
	_, err := d.health(ctx, false)
	return err
}

// PollMetrics is the background variant of RefreshMetrics.
func (d *Dispatcher) PollMetrics(ctx context.Context) error {
	_, err := d.metrics(ctx, false)
	return err
}

func (d *Dispatcher) health(ctx context.Context, interactive bool) (*model.SystemHealth, error) {
	res, err := d.client.Health(ctx)
	if err == nil && res == nil {
		err = errors.New("empty health response")
	}
	if err != nil {
		return nil, d.fail(state.KindHealth, MsgHealth, err, interactive)
	}
	d.store.ApplySuccess(state.KindHealth, res)
	d.succeeded(state.KindHealth)
	return res, nil
}

func (d *Dispatcher) metrics(ctx context.Context, interactive bool) (*model.SystemMetrics, error) {
	res, err := d.client.Metrics(ctx)
	if err == nil && res == nil {
		err = errors.New("empty metrics response")
	}
	if err != nil {
		return nil, d.fail(state.KindMetrics, MsgMetrics, err, interactive)
	}
	d.store.ApplySuccess(state.KindMetrics, res)
	d.succeeded(state.KindMetrics)
	return res, nil
}

// UI selection and housekeeping pass-throughs.

func (d *Dispatcher) SelectDateRange(r model.DateRange) { d.store.SetSelectedDateRange(r) }

func (d *Dispatcher) SelectDepartment(id string) { d.store.SetSelectedDepartment(id) }

func (d *Dispatcher) ClearError() { d.store.ClearError() }

func (d *Dispatcher) ClearHistory() { d.store.ClearHistory() }

func (d *Dispatcher) ClearCoverage() { d.store.ClearCoverage() }

func (d *Dispatcher) ClearAvailability() { d.store.ClearAvailability() }

func (d *Dispatcher) Reset() { d.store.Reset() }

func (d *Dispatcher) invalid(kind state.Kind, err error) error {
	metrics.Dispatches.WithLabelValues(string(kind), "invalid").Inc()
	d.logger.Debug().Err(err).Str("kind", string(kind)).Msg("rejected invalid request")
	return err
}

func (d *Dispatcher) fail(kind state.Kind, fallback string, err error, interactive bool) error {
	msg := apierr.Message(err, fallback)
	metrics.Dispatches.WithLabelValues(string(kind), "failure").Inc()
	if interactive {
		d.store.ApplyFailure(kind, msg)
		d.logger.Warn().Err(err).Str("kind", string(kind)).Int("status", apierr.Status(err)).Msg(msg)
	}
	return &apierr.OperationError{Op: string(kind), Message: msg, Err: err}
}

func (d *Dispatcher) succeeded(kind state.Kind) {
	metrics.Dispatches.WithLabelValues(string(kind), "success").Inc()
}

func validateAvailability(p model.AvailabilityParams) error {
	if err := daterange.Validate(model.DateRange{StartDate: p.StartDate, EndDate: p.EndDate}); err != nil {
		return err
	}
	switch p.ShiftType {
	case "", model.ShiftTypeIncident, model.ShiftTypeWaakdienst:
		return nil
	default:
		return &apierr.ValidationError{Field: "shift_type", Reason: "must be incident or waakdienst"}
	}
}
