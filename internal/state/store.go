// Package state holds the orchestrator's single source of truth. All writes
// go through the Apply*/Set*/Clear*/Reset entry points; reads go through
// Snapshot and the pure selectors in selectors.go.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamplanner/internal/events"
	"teamplanner/internal/metrics"
	"teamplanner/internal/model"
)

// Status is the lifecycle of the most recent schedule dispatch.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Kind names an asynchronous operation.
type Kind string

const (
	KindSchedule     Kind = "schedule"
	KindCoverage     Kind = "coverage"
	KindAvailability Kind = "availability"
	KindHealth       Kind = "health"
	KindMetrics      Kind = "metrics"
)

// State is a point-in-time copy of the aggregate. Result pointers are
// shared with the store and must be treated as read-only.
type State struct {
	OrchestrationStatus  Status                       `json:"orchestrationStatus"`
	LastOrchestration    *model.OrchestrationResult   `json:"lastOrchestration"`
	OrchestrationHistory []*model.OrchestrationResult `json:"orchestrationHistory"`
	CoverageData         *model.CoverageAnalysis      `json:"coverageData"`
	CoverageLoading      bool                         `json:"coverageLoading"`
	AvailabilityData     []model.EmployeeAvailability `json:"availabilityData"`
	AvailabilityLoading  bool                         `json:"availabilityLoading"`
	SystemHealth         *model.SystemHealth          `json:"systemHealth"`
	SystemMetrics        *model.SystemMetrics         `json:"systemMetrics"`
	Loading              bool                         `json:"loading"`
	Error                string                       `json:"error,omitempty"` // empty means no error
	SelectedDateRange    model.DateRange              `json:"selectedDateRange"`
	SelectedDepartment   string                       `json:"selectedDepartment,omitempty"`
}

// Notifier receives a change event after every mutation.
type Notifier interface {
	Publish(topic string, evt events.Event)
}

// Store is safe for concurrent use. Each entry point runs to completion
// under one lock, so readers never observe a partial transition. Change
// events are published in mutation order.
type Store struct {
	pubMu    sync.Mutex // held across mutate and publish; taken before mu
	mu       sync.Mutex
	cur      State
	seq      uint64
	history  *History
	notifier Notifier
	logger   zerolog.Logger
}

// NewStore creates the store in its initial state. notifier may be nil.
func NewStore(logger zerolog.Logger, notifier Notifier) *Store {
	s := &Store{
		history:  NewHistory(HistoryLimit),
		notifier: notifier,
		logger:   logger.With().Str("component", "state").Logger(),
	}
	s.cur = initialState()
	return s
}

func initialState() State {
	return State{OrchestrationStatus: StatusIdle, AvailabilityData: []model.EmployeeAvailability{}}
}

// ApplyPending marks kind as in flight. Interactive kinds clear Error.
func (s *Store) ApplyPending(kind Kind) {
	s.mutate(kind, "pending", func(st *State) {
		switch kind {
		case KindSchedule:
			st.OrchestrationStatus = StatusRunning
			st.Loading = true
			st.Error = ""
		case KindCoverage:
			st.CoverageLoading = true
			st.Error = ""
		case KindAvailability:
			st.AvailabilityLoading = true
			st.Error = ""
		}
	})
}

// ApplySuccess records payload for kind. A payload of the wrong type is
// logged and ignored.
func (s *Store) ApplySuccess(kind Kind, payload any) {
	s.mutate(kind, "success", func(st *State) {
		switch kind {
		case KindSchedule:
			r, ok := payload.(*model.OrchestrationResult)
			if !ok || r == nil {
				s.mismatch(kind, payload)
				return
			}
			st.OrchestrationStatus = StatusSuccess
			st.Loading = false
			st.LastOrchestration = r
			s.history.Push(r)
			metrics.HistoryLength.Set(float64(s.history.Len()))
			s.logger.Debug().Int("history", s.history.Len()).Int("capacity", s.history.Cap()).Msg("orchestration recorded")
		case KindCoverage:
			a, ok := payload.(*model.CoverageAnalysis)
			if !ok || a == nil {
				s.mismatch(kind, payload)
				return
			}
			st.CoverageData = a
			st.CoverageLoading = false
		case KindAvailability:
			var list []model.EmployeeAvailability
			switch p := payload.(type) {
			case *model.AvailabilityResponse:
				if p == nil {
					s.mismatch(kind, payload)
					return
				}
				list = p.AvailableEmployees
			case []model.EmployeeAvailability:
				list = p
			default:
				s.mismatch(kind, payload)
				return
			}
			st.AvailabilityData = append([]model.EmployeeAvailability{}, list...)
			st.AvailabilityLoading = false
		case KindHealth:
			h, ok := payload.(*model.SystemHealth)
			if !ok || h == nil {
				s.mismatch(kind, payload)
				return
			}
			st.SystemHealth = h
		case KindMetrics:
			m, ok := payload.(*model.SystemMetrics)
			if !ok || m == nil {
				s.mismatch(kind, payload)
				return
			}
			st.SystemMetrics = m
		default:
			s.mismatch(kind, payload)
		}
	})
}

// ApplyFailure records message as the current error and ends kind's loading phase.
// A failed schedule leaves LastOrchestration and history untouched.
func (s *Store) ApplyFailure(kind Kind, message string) {
	s.mutate(kind, "failure", func(st *State) {
		switch kind {
		case KindSchedule:
			st.OrchestrationStatus = StatusError
			st.Loading = false
		case KindCoverage:
			st.CoverageLoading = false
		case KindAvailability:
			st.AvailabilityLoading = false
		}
		st.Error = message
	})
}

func (s *Store) SetSelectedDateRange(r model.DateRange) {
	s.mutate("selection", "date_range", func(st *State) { st.SelectedDateRange = r })
}

func (s *Store) SetSelectedDepartment(id string) {
	s.mutate("selection", "department", func(st *State) { st.SelectedDepartment = id })
}

func (s *Store) ClearError() {
	s.mutate("error", "cleared", func(st *State) { st.Error = "" })
}

// ClearHistory empties the run history; LastOrchestration is kept.
func (s *Store) ClearHistory() {
	s.mutate("history", "cleared", func(st *State) {
		s.history.Clear()
		metrics.HistoryLength.Set(0)
	})
}

func (s *Store) ClearCoverage() {
	s.mutate(KindCoverage, "cleared", func(st *State) {
		st.CoverageData = nil
		st.CoverageLoading = false
	})
}

func (s *Store) ClearAvailability() {
	s.mutate(KindAvailability, "cleared", func(st *State) {
		st.AvailabilityData = []model.EmployeeAvailability{}
		st.AvailabilityLoading = false
	})
}

// Reset replaces the aggregate with a fresh initial state.
func (s *Store) Reset() {
	s.mutate("state", "reset", func(st *State) {
		*st = initialState()
		s.history.Clear()
		metrics.HistoryLength.Set(0)
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	out := s.cur
	out.OrchestrationHistory = s.history.Items()
	out.AvailabilityData = append([]model.EmployeeAvailability{}, s.cur.AvailabilityData...)
	return out
}

func (s *Store) mutate(kind Kind, phase string, fn func(st *State)) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	fn(&s.cur)
	s.seq++
	var evt events.Event
	if s.notifier != nil {
		evt = changeEvent(s.seq, kind, phase, &s.cur, s.history.Len())
	}
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier.Publish(events.Topic, evt)
	}
}

func (s *Store) mismatch(kind Kind, payload any) {
	s.logger.Warn().Str("kind", string(kind)).Type("payload", payload).Msg("ignoring success payload of unexpected type")
}

func changeEvent(seq uint64, kind Kind, phase string, st *State, historyLen int) events.Event {
	return events.Event{
		ID:   uuid.New().String(),
		Seq:  seq,
		Type: string(kind) + "." + phase,
		TS:   time.Now().UTC().Format(time.RFC3339Nano),
		Data: map[string]any{
			"orchestrationStatus": st.OrchestrationStatus,
			"loading":             st.Loading,
			"coverageLoading":     st.CoverageLoading,
			"availabilityLoading": st.AvailabilityLoading,
			"error":               st.Error,
			"historyLength":       historyLen,
		},
	}
}
