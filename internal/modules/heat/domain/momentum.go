package domain

import (
	"fmt"
	"strings"
	"time"
)

// GroupMomentum is the engine-owned heat state of one group.
type GroupMomentum struct {
	GroupID           string
	Score             float64
	Tier              Tier
	StreakDays        int
	PeakScore         float64
	PeakDate          *time.Time
	LastCalculatedAt  *time.Time
	LastProcessedDate *time.Time
	YesterdayGCR      *float64
	BaselineGCR       *float64
}

func NewGroupMomentum(groupID string) GroupMomentum {
	return GroupMomentum{GroupID: groupID, Tier: TierCold}
}

func (m GroupMomentum) Validate() error {
	if strings.TrimSpace(m.GroupID) == "" {
		return fmt.Errorf("group id is required")
	}
	if m.Score < MinScore || m.Score > MaxScore {
		return fmt.Errorf("heat score %.2f out of range", m.Score)
	}
	if m.Tier != ScoreToTier(m.Score) {
		return fmt.Errorf("heat tier %d inconsistent with score %.2f", m.Tier, m.Score)
	}
	if m.StreakDays < 0 {
		return fmt.Errorf("streak days must be non-negative")
	}
	if m.PeakScore < m.Score {
		return fmt.Errorf("peak score %.2f below heat score %.2f", m.PeakScore, m.Score)
	}
	return nil
}

// AlreadyProcessed reports whether date has been folded into the score, which
// makes a repeated run for the same or an older date a no-op.
func (m GroupMomentum) AlreadyProcessed(date time.Time) bool {
	return m.LastProcessedDate != nil && !m.LastProcessedDate.Before(date)
}

// DailyInput is what one day contributes to the recurrence.
type DailyInput struct {
	Date         time.Time
	YesterdayGCR float64
	BaselineGCR  float64
	CalculatedAt time.Time
}

// Advance folds one processed day into the momentum and returns the new state.
// The receiver is not modified.
func (m GroupMomentum) Advance(in DailyInput) GroupMomentum {
	next := m
	delta := in.YesterdayGCR - in.BaselineGCR
	next.Score = NextScore(m.Score, delta)
	next.Tier = ScoreToTier(next.Score)

	if next.Score > m.PeakScore {
		next.PeakScore = next.Score
		peakDate := in.Date
		next.PeakDate = &peakDate
	}
	if in.YesterdayGCR > in.BaselineGCR {
		next.StreakDays = m.StreakDays + 1
	} else {
		next.StreakDays = 0
	}

	calculatedAt := in.CalculatedAt
	processed := in.Date
	yesterday := in.YesterdayGCR
	baseline := in.BaselineGCR
	next.LastCalculatedAt = &calculatedAt
	next.LastProcessedDate = &processed
	next.YesterdayGCR = &yesterday
	next.BaselineGCR = &baseline
	return next
}

// DailyCompletion is the per-group, per-date aggregate the GCR calculator upserts.
type DailyCompletion struct {
	GroupID        string
	Date           time.Time
	TotalPossible  int
	TotalCompleted int
	GCR            float64
	MemberCount    int
	GoalCount      int
}

func (d DailyCompletion) Validate() error {
	if strings.TrimSpace(d.GroupID) == "" {
		return fmt.Errorf("group id is required")
	}
	if d.TotalPossible < 0 {
		return fmt.Errorf("total possible must be non-negative")
	}
	if d.TotalCompleted < 0 || d.TotalCompleted > d.TotalPossible {
		return fmt.Errorf("total completed %d outside [0,%d]", d.TotalCompleted, d.TotalPossible)
	}
	if d.GCR < 0 || d.GCR > 1 {
		return fmt.Errorf("gcr %.4f outside [0,1]", d.GCR)
	}
	return nil
}

// Snapshot is the persisted per-day view used by the history reader.
type Snapshot struct {
	GroupID    string
	Date       time.Time
	Score      float64
	Tier       Tier
	GCR        float64
	StreakDays int
}

func SnapshotOf(m GroupMomentum, date time.Time, gcr float64) Snapshot {
	return Snapshot{GroupID: m.GroupID, Date: date, Score: m.Score, Tier: m.Tier, GCR: gcr, StreakDays: m.StreakDays}
}
