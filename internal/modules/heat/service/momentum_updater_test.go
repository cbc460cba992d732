package service_test

import (
	"context"
	"testing"
	"time"

	"pursue/internal/modules/heat/domain"
	"pursue/internal/modules/heat/service"
	"pursue/internal/platform/clock"
)

func upsertGCR(t *testing.T, s *memCompletions, groupID string, date time.Time, gcr float64) {
	t.Helper()
	if err := s.Upsert(context.Background(), domain.DailyCompletion{GroupID: groupID, Date: date, TotalPossible: 10, GCR: gcr}); err != nil {
		t.Fatalf("upsert %s: %v", clock.FormatDate(date), err)
	}
}

func TestBaselineWindowIsSevenDaysBeforeDate(t *testing.T) {
	t.Parallel()
	completions := newMemCompletions()
	momentum := newMemMomentum()
	updater := service.NewMomentumUpdater(clock.Fixed(noon), completions, momentum, nil)

	upsertGCR(t, completions, "g1", monday.AddDate(0, 0, -8), 1)
	upsertGCR(t, completions, "g1", monday.AddDate(0, 0, -7), 0.2)
	upsertGCR(t, completions, "g1", monday.AddDate(0, 0, -1), 0.4)
	upsertGCR(t, completions, "g1", monday, 0.5)

	result, err := updater.CalculateGroupHeat(context.Background(), "g1", monday)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.After.BaselineGCR == nil {
		t.Fatal("expected a baseline to be recorded")
	}
	// only date-7 and date-1 count
	near(t, 0.3, *result.After.BaselineGCR)
	near(t, 0.5, *result.After.YesterdayGCR)
	// (0 + 0.2*50) * 0.98
	near(t, 9.8, result.After.Score)
}

func TestBaselineFallsBackToDayWhenWindowEmpty(t *testing.T) {
	t.Parallel()
	completions := newMemCompletions()
	momentum := newMemMomentum()
	updater := service.NewMomentumUpdater(clock.Fixed(noon), completions, momentum, nil)

	upsertGCR(t, completions, "g1", monday.AddDate(0, 0, -8), 1)
	upsertGCR(t, completions, "g1", monday, 0.6)

	result, err := updater.CalculateGroupHeat(context.Background(), "g1", monday)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	near(t, 0.6, *result.After.BaselineGCR)
	near(t, 0, result.After.Score)
}
