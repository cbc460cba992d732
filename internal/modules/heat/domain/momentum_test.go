package domain

import (
	"testing"
	"time"
)

var (
	day1 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now1 = time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
)

func TestAdvanceUpdatesPeakStreakAndBookkeeping(t *testing.T) {
	t.Parallel()
	pre := GroupMomentum{GroupID: "g1", Score: 30, Tier: TierEmber, PeakScore: 40, StreakDays: 2}
	post := pre.Advance(DailyInput{Date: day1, YesterdayGCR: 1, BaselineGCR: 0, CalculatedAt: now1})

	if !approx(post.Score, 78.4) || post.Tier != TierInferno {
		t.Fatalf("unexpected score/tier: %.2f/%v", post.Score, post.Tier)
	}
	if post.PeakScore != post.Score || post.PeakDate == nil || !post.PeakDate.Equal(day1) {
		t.Fatalf("expected new peak on %s, got %.2f %v", day1, post.PeakScore, post.PeakDate)
	}
	if post.StreakDays != 3 {
		t.Fatalf("expected streak 3, got %d", post.StreakDays)
	}
	if post.LastCalculatedAt == nil || !post.LastCalculatedAt.Equal(now1) {
		t.Fatalf("last calculated at not set")
	}
	if post.LastProcessedDate == nil || !post.LastProcessedDate.Equal(day1) {
		t.Fatalf("last processed date not set")
	}
	if *post.YesterdayGCR != 1 || *post.BaselineGCR != 0 {
		t.Fatalf("gcr detail fields not recorded")
	}
	if err := post.Validate(); err != nil {
		t.Fatalf("advanced state invalid: %v", err)
	}
	if pre.Score != 30 || pre.StreakDays != 2 {
		t.Fatalf("receiver was mutated: %+v", pre)
	}
}

func TestAdvanceKeepsPeakWhenFalling(t *testing.T) {
	t.Parallel()
	peakDate := day1.AddDate(0, 0, -10)
	pre := GroupMomentum{GroupID: "g1", Score: 50, Tier: TierSteady, PeakScore: 80, PeakDate: &peakDate, StreakDays: 4}
	post := pre.Advance(DailyInput{Date: day1, YesterdayGCR: 0.5, BaselineGCR: 0.5, CalculatedAt: now1})

	if !approx(post.Score, 49) {
		t.Fatalf("expected decay to 49, got %v", post.Score)
	}
	if post.PeakScore != 80 || !post.PeakDate.Equal(peakDate) {
		t.Fatalf("peak must not move: %.2f %v", post.PeakScore, post.PeakDate)
	}
	if post.StreakDays != 0 {
		t.Fatalf("expected streak reset when not improving, got %d", post.StreakDays)
	}
}

func TestNewGroupWithoutHistoryHasNoDelta(t *testing.T) {
	t.Parallel()
	pre := NewGroupMomentum("fresh")
	gcr := 0.8
	post := pre.Advance(DailyInput{Date: day1, YesterdayGCR: gcr, BaselineGCR: Baseline(nil, gcr), CalculatedAt: now1})
	if post.Score != 0 || post.Tier != TierCold || post.StreakDays != 0 {
		t.Fatalf("expected a fresh group to stay cold, got %+v", post)
	}
	if post.PeakDate != nil {
		t.Fatalf("peak date must stay unset without a new peak")
	}
}

func TestAlreadyProcessed(t *testing.T) {
	t.Parallel()
	m := NewGroupMomentum("g")
	if m.AlreadyProcessed(day1) {
		t.Fatalf("fresh group has processed nothing")
	}
	processed := day1
	m.LastProcessedDate = &processed
	if !m.AlreadyProcessed(day1) || !m.AlreadyProcessed(day1.AddDate(0, 0, -1)) {
		t.Fatalf("same or earlier dates are already processed")
	}
	if m.AlreadyProcessed(day1.AddDate(0, 0, 1)) {
		t.Fatalf("later date is not processed yet")
	}
}

func TestDailyCompletionValidate(t *testing.T) {
	t.Parallel()
	ok := DailyCompletion{GroupID: "g", TotalPossible: 2, TotalCompleted: 1, GCR: 0.5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := ok
	bad.TotalCompleted = 3
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected completed > possible to fail")
	}
}
