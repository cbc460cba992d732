package domain

import (
	"testing"
	"time"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestGoalAppliesOn(t *testing.T) {
	t.Parallel()
	everyDay := Goal{ID: "a", Cadence: CadenceDaily}
	weekdays := Goal{ID: "b", Cadence: CadenceDaily, ActiveDays: 0b0111110}
	weekly := Goal{ID: "c", Cadence: "weekly"}

	if !everyDay.AppliesOn(monday) || !everyDay.AppliesOn(monday.AddDate(0, 0, 6)) {
		t.Fatalf("unscheduled daily goal applies every day")
	}
	if !weekdays.AppliesOn(monday) {
		t.Fatalf("weekday goal applies on monday")
	}
	if weekdays.AppliesOn(monday.AddDate(0, 0, -1)) {
		t.Fatalf("weekday goal must not apply on sunday")
	}
	if weekly.AppliesOn(monday) {
		t.Fatalf("non-daily cadence never counts")
	}
}

func TestTallyCompletions(t *testing.T) {
	t.Parallel()
	goals := []Goal{
		{ID: "read", Cadence: CadenceDaily, Metric: MetricBinary},
		{ID: "run", Cadence: CadenceDaily, Metric: MetricNumeric, Target: ptr(5)},
		{ID: "weekend", Cadence: CadenceDaily, Metric: MetricBinary, ActiveDays: 0b1000001},
	}
	members := []string{"u1", "u2"}
	entries := []ProgressEntry{
		{UserID: "u1", GoalID: "read", Value: 1},
		{UserID: "u1", GoalID: "read", Value: 1},
		{UserID: "u1", GoalID: "run", Value: 4},
		{UserID: "u2", GoalID: "run", Value: 6},
		{UserID: "u2", GoalID: "weekend", Value: 1},
		{UserID: "stranger", GoalID: "read", Value: 1},
	}
	got := TallyCompletions("g", monday, members, goals, entries)
	if got.MemberCount != 2 || got.GoalCount != 2 || got.TotalPossible != 4 {
		t.Fatalf("unexpected denominators: %+v", got)
	}
	if got.TotalCompleted != 2 || got.GCR != 0.5 {
		t.Fatalf("expected 2/4 completed, got %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("tally invalid: %v", err)
	}
}

func TestTallyCompletionsEmptyGroup(t *testing.T) {
	t.Parallel()
	got := TallyCompletions("g", monday, nil, nil, nil)
	if got.TotalPossible != 0 || got.GCR != 0 {
		t.Fatalf("expected zero tally, got %+v", got)
	}
	got = TallyCompletions("g", monday, []string{"u1"}, nil, []ProgressEntry{{UserID: "u1", GoalID: "x", Value: 1}})
	if got.TotalPossible != 0 || got.TotalCompleted != 0 {
		t.Fatalf("expected zero tally with no goals, got %+v", got)
	}
}
