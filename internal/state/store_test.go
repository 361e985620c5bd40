package state

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"teamplanner/internal/events"
	"teamplanner/internal/model"
)

type recordNotifier struct {
	mu   sync.Mutex
	evts []events.Event
}

func (r *recordNotifier) Publish(topic string, evt events.Event) {
	r.mu.Lock()
	r.evts = append(r.evts, evt)
	r.mu.Unlock()
}

func result(n int) *model.OrchestrationResult {
	return &model.OrchestrationResult{Success: true, Statistics: model.OrchestrationStatistics{AssignmentsMade: n}}
}

func newStore() *Store { return NewStore(zerolog.Nop(), nil) }

func TestInitialState(t *testing.T) {
	st := newStore().Snapshot()
	if st.OrchestrationStatus != StatusIdle || st.Loading || st.Error != "" {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if st.LastOrchestration != nil || len(st.OrchestrationHistory) != 0 || st.AvailabilityData == nil {
		t.Fatalf("unexpected initial collections %+v", st)
	}
}

func TestScheduleSuccess(t *testing.T) {
	s := newStore()
	s.ApplyFailure(KindCoverage, "stale coverage error")
	s.ApplyPending(KindSchedule)
	st := s.Snapshot()
	if !IsRunning(st) || !st.Loading || st.Error != "" {
		t.Fatalf("pending schedule should be running, loading, error cleared: %+v", st)
	}
	r := result(8)
	s.ApplySuccess(KindSchedule, r)
	st = s.Snapshot()
	if st.OrchestrationStatus != StatusSuccess || st.Loading {
		t.Fatalf("unexpected status after success %+v", st)
	}
	if st.LastOrchestration != r || st.OrchestrationHistory[0] != r {
		t.Fatal("history[0] must be the same result as lastOrchestration")
	}
}

func TestScheduleFailureKeepsLastResult(t *testing.T) {
	s := newStore()
	r := result(3)
	s.ApplyPending(KindSchedule)
	s.ApplySuccess(KindSchedule, r)
	s.ApplyPending(KindSchedule)
	s.ApplyFailure(KindSchedule, "Team not found")
	st := s.Snapshot()
	if st.OrchestrationStatus != StatusError || st.Error != "Team not found" || st.Loading {
		t.Fatalf("unexpected failure state %+v", st)
	}
	if st.LastOrchestration != r || len(st.OrchestrationHistory) != 1 {
		t.Fatal("failure must not touch lastOrchestration or history")
	}
}

func TestHistoryKeepsTenNewestFirst(t *testing.T) {
	s := newStore()
	const n = 25
	all := make([]*model.OrchestrationResult, n)
	for i := 0; i < n; i++ {
		all[i] = result(i)
		s.ApplyPending(KindSchedule)
		s.ApplySuccess(KindSchedule, all[i])
		if got := len(s.Snapshot().OrchestrationHistory); got > HistoryLimit {
			t.Fatalf("history length %d after insert %d", got, i)
		}
	}
	h := s.Snapshot().OrchestrationHistory
	if len(h) != HistoryLimit {
		t.Fatalf("want %d entries, got %d", HistoryLimit, len(h))
	}
	for i, r := range h {
		if r != all[n-1-i] {
			t.Fatalf("position %d holds run %d, want %d", i, r.Statistics.AssignmentsMade, n-1-i)
		}
	}
}

func TestLoadingFlagsAreIndependent(t *testing.T) {
	s := newStore()
	s.ApplyPending(KindCoverage)
	s.ApplyPending(KindSchedule)
	st := s.Snapshot()
	if !st.CoverageLoading || st.AvailabilityLoading || !st.Loading {
		t.Fatalf("unexpected flags %+v", st)
	}
	s.ApplySuccess(KindSchedule, result(1))
	if st = s.Snapshot(); !st.CoverageLoading {
		t.Fatal("schedule success must not clear coverageLoading")
	}
	s.ApplyPending(KindAvailability)
	s.ApplyFailure(KindCoverage, "boom")
	st = s.Snapshot()
	if st.CoverageLoading || !st.AvailabilityLoading || st.OrchestrationStatus != StatusSuccess || st.Loading {
		t.Fatalf("coverage failure leaked into other flags %+v", st)
	}
}

func TestHealthAndMetricsTouchOnlyTheirFields(t *testing.T) {
	s := newStore()
	s.ApplyPending(KindSchedule)
	s.ApplyPending(KindHealth)
	s.ApplySuccess(KindHealth, &model.SystemHealth{Status: model.HealthDegraded})
	s.ApplySuccess(KindMetrics, &model.SystemMetrics{PeriodDays: 30})
	st := s.Snapshot()
	if !IsRunning(st) || !st.Loading {
		t.Fatalf("health/metrics changed schedule status %+v", st)
	}
	if st.SystemMetrics.PeriodDays != 30 || !IsSystemDegraded(st) || IsSystemHealthy(st) {
		t.Fatalf("snapshots not stored %+v", st)
	}
	s.ApplyFailure(KindMetrics, "Failed to get system metrics")
	st = s.Snapshot()
	if st.Error != "Failed to get system metrics" || !IsRunning(st) || st.SystemMetrics == nil {
		t.Fatalf("metrics failure should only set error %+v", st)
	}
}

func TestErrorIsLastWriteWins(t *testing.T) {
	s := newStore()
	s.ApplyFailure(KindCoverage, "first")
	s.ApplyFailure(KindHealth, "second")
	if got := s.Snapshot().Error; got != "second" {
		t.Fatalf("got %q", got)
	}
	s.ClearError()
	if HasError(s.Snapshot()) {
		t.Fatal("ClearError did not clear")
	}
}

func TestAvailabilityPayloads(t *testing.T) {
	s := newStore()
	s.ApplyPending(KindAvailability)
	s.ApplySuccess(KindAvailability, &model.AvailabilityResponse{AvailableEmployees: []model.EmployeeAvailability{{EmployeeID: "e1"}}, TotalAvailable: 1})
	st := s.Snapshot()
	if st.AvailabilityLoading || len(st.AvailabilityData) != 1 {
		t.Fatalf("availability not stored %+v", st)
	}
	st.AvailabilityData[0].Name = "mutated"
	if s.Snapshot().AvailabilityData[0].Name != "" {
		t.Fatal("snapshot aliases store memory")
	}
	s.ApplySuccess(KindAvailability, []model.EmployeeAvailability{{EmployeeID: "e2"}, {EmployeeID: "e3"}})
	if len(s.Snapshot().AvailabilityData) != 2 {
		t.Fatal("slice payload not accepted")
	}
}

func TestMismatchedPayloadIsIgnored(t *testing.T) {
	s := newStore()
	s.ApplyPending(KindSchedule)
	s.ApplySuccess(KindSchedule, &model.CoverageAnalysis{})
	s.ApplySuccess(KindCoverage, (*model.CoverageAnalysis)(nil))
	s.ApplySuccess("bogus", 42)
	st := s.Snapshot()
	if st.LastOrchestration != nil || st.CoverageData != nil || !IsRunning(st) {
		t.Fatalf("mismatched payload changed state %+v", st)
	}
}

func TestClearsAndReset(t *testing.T) {
	s := newStore()
	s.ApplySuccess(KindSchedule, result(1))
	s.ApplySuccess(KindCoverage, &model.CoverageAnalysis{Summary: model.CoverageSummary{CoveragePercentage: 50}})
	s.ApplySuccess(KindAvailability, []model.EmployeeAvailability{{EmployeeID: "e1"}})
	s.SetSelectedDateRange(model.DateRange{StartDate: "2024-01-15", EndDate: "2024-01-21"})
	s.SetSelectedDepartment("ops")

	s.ClearHistory()
	st := s.Snapshot()
	if len(st.OrchestrationHistory) != 0 || st.LastOrchestration == nil {
		t.Fatalf("ClearHistory should empty history and keep last run %+v", st)
	}
	s.ClearCoverage()
	s.ClearAvailability()
	st = s.Snapshot()
	if st.CoverageData != nil || len(st.AvailabilityData) != 0 {
		t.Fatalf("clears did not apply %+v", st)
	}
	if st.SelectedDepartment != "ops" || st.SelectedDateRange.StartDate != "2024-01-15" {
		t.Fatalf("selection lost %+v", st)
	}

	s.Reset()
	st = s.Snapshot()
	if st.LastOrchestration != nil || st.SelectedDepartment != "" || !st.SelectedDateRange.IsZero() || st.OrchestrationStatus != StatusIdle {
		t.Fatalf("reset incomplete %+v", st)
	}
}

func TestSelectors(t *testing.T) {
	s := newStore()
	st := s.Snapshot()
	if HasResults(st) || IsAnyLoading(st) || LatestSummary(st) != "" || CoverageSummary(st) != "" {
		t.Fatalf("unexpected flags on empty state %+v", Derive(st))
	}
	s.ApplyPending(KindAvailability)
	if !IsAnyLoading(s.Snapshot()) {
		t.Fatal("availability loading should count")
	}
	s.ApplySuccess(KindSchedule, result(2))
	f := Derive(s.Snapshot())
	if !f.HasResults || !f.IsSuccess || f.LatestSummary == "" {
		t.Fatalf("unexpected derived flags %+v", f)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	n := &recordNotifier{}
	s := NewStore(zerolog.Nop(), n)
	s.ApplyPending(KindSchedule)
	s.ApplySuccess(KindSchedule, result(1))
	if len(n.evts) != 2 {
		t.Fatalf("want 2 events, got %d", len(n.evts))
	}
	last := n.evts[1]
	if last.Type != "schedule.success" || last.Data["historyLength"].(int) != 1 || last.ID == "" {
		t.Fatalf("unexpected event %+v", last)
	}
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	s := newStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) { defer wg.Done(); s.ApplyPending(KindSchedule); s.ApplySuccess(KindSchedule, result(i)) }(i)
		go func() { defer wg.Done(); s.ApplyPending(KindCoverage); s.ApplyFailure(KindCoverage, "x") }()
		go func() { defer wg.Done(); _ = Derive(s.Snapshot()) }()
	}
	wg.Wait()
	st := s.Snapshot()
	if len(st.OrchestrationHistory) != HistoryLimit || st.OrchestrationHistory[0] != st.LastOrchestration {
		t.Fatalf("invariants broken after concurrent writes: len=%d", len(st.OrchestrationHistory))
	}
}

func TestEventsArriveInMutationOrder(t *testing.T) {
	n := &recordNotifier{}
	s := NewStore(zerolog.Nop(), n)
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.ApplyPending(KindCoverage); s.ApplySuccess(KindCoverage, &model.CoverageAnalysis{}) }()
		go func() { defer wg.Done(); s.ApplyPending(KindAvailability); s.ApplyFailure(KindAvailability, "x") }()
	}
	wg.Wait()

	if len(n.evts) != 160 {
		t.Fatalf("want 160 events, got %d", len(n.evts))
	}
	for i, evt := range n.evts {
		if evt.Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, evt.Seq)
		}
	}
	// the last event delivered describes the final state
	last, st := n.evts[len(n.evts)-1], s.Snapshot()
	if last.Data["coverageLoading"].(bool) != st.CoverageLoading || last.Data["availabilityLoading"].(bool) != st.AvailabilityLoading {
		t.Fatalf("last event %+v disagrees with final state %+v", last.Data, st)
	}
}
