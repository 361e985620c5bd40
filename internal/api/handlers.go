package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"teamplanner/internal/apierr"
	"teamplanner/internal/daterange"
	"teamplanner/internal/model"
	"teamplanner/internal/permissions"
	"teamplanner/internal/state"
	"teamplanner/internal/summary"
)

// StateHandler handles GET /v1/state
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st := s.Dispatcher.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"state": st, "flags": state.Derive(st)})
}

// OrchestrationsHandler handles POST /v1/orchestrations (run) and GET (history)
func (s *Server) OrchestrationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.OrchestrationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !s.authorize(w, r, permissions.CapRunOrchestrator) {
			return
		}
		res, err := s.Dispatcher.ScheduleOrchestration(r.Context(), req)
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": res, "summary": summary.Orchestration(res)})
	case http.MethodGet:
		st := s.Dispatcher.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{"last": st.LastOrchestration, "history": st.OrchestrationHistory})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CoverageHandler handles GET/DELETE /v1/coverage
func (s *Server) CoverageHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		dr, err := s.rangeFromQuery(q)
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		res, err := s.Dispatcher.GetCoverage(r.Context(), model.CoverageParams{StartDate: dr.StartDate, EndDate: dr.EndDate, DepartmentID: q.Get("department_id")})
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"coverage": res, "summary": summary.Coverage(res)})
	case http.MethodDelete:
		s.Dispatcher.ClearCoverage()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AvailabilityHandler handles GET/DELETE /v1/availability
func (s *Server) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		dr, err := s.rangeFromQuery(q)
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		res, err := s.Dispatcher.GetAvailability(r.Context(), model.AvailabilityParams{
			StartDate: dr.StartDate, EndDate: dr.EndDate, ShiftType: q.Get("shift_type"), DepartmentID: q.Get("department_id"),
		})
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case http.MethodDelete:
		s.Dispatcher.ClearAvailability()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SystemHealthHandler handles GET /v1/system/health, an on-demand refresh
func (s *Server) SystemHealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, err := s.Dispatcher.RefreshSystemHealth(r.Context())
	if err != nil {
		writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SystemMetricsHandler handles GET /v1/system/metrics
func (s *Server) SystemMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, err := s.Dispatcher.RefreshMetrics(r.Context())
	if err != nil {
		writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HistoryHandler handles DELETE /v1/history (admin)
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r, permissions.CapRunOrchestrator) {
		return
	}
	s.Dispatcher.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// ErrorHandler handles DELETE /v1/error
func (s *Server) ErrorHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.Dispatcher.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// ResetHandler handles POST /v1/reset (admin)
func (s *Server) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r, permissions.CapRunOrchestrator) {
		return
	}
	s.Dispatcher.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// SelectionHandler handles PUT /v1/selection. Absent fields are left unchanged.
func (s *Server) SelectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		DateRange    *model.DateRange `json:"date_range"`
		DepartmentID *string          `json:"department_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.DateRange != nil {
		dr, err := daterange.Custom(body.DateRange.StartDate, body.DateRange.EndDate)
		if err != nil {
			writeDispatchError(w, r, err)
			return
		}
		s.Dispatcher.SelectDateRange(dr)
	}
	if body.DepartmentID != nil {
		s.Dispatcher.SelectDepartment(*body.DepartmentID)
	}
	st := s.Dispatcher.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"date_range": st.SelectedDateRange, "department_id": st.SelectedDepartment})
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check Redis connectivity when events fan out through Redis
	type pinger interface{ Ping(ctx context.Context) error }
	if pb, ok := s.Broker.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pb.Ping(ctx); err != nil {
			writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}

// rangeFromQuery resolves week=current|next, or start_date/end_date in any
// accepted date form, into an ISO range. With no range parameters the
// selected date range is used when one is set.
func (s *Server) rangeFromQuery(q url.Values) (model.DateRange, error) {
	switch q.Get("week") {
	case "":
		if q.Get("start_date") == "" && q.Get("end_date") == "" {
			if sel := s.Dispatcher.Snapshot().SelectedDateRange; !sel.IsZero() {
				return sel, nil
			}
		}
	case "current":
		return daterange.CurrentWeek(s.Now()), nil
	case "next":
		return daterange.NextWeek(s.Now()), nil
	default:
		return model.DateRange{}, &apierr.ValidationError{Field: "week", Reason: "must be current or next"}
	}
	return daterange.Custom(q.Get("start_date"), q.Get("end_date"))
}
