package domain

import "time"

const CadenceDaily = "daily"

// GroupRef identifies a batch candidate.
type GroupRef struct {
	ID   string
	Name string
}

// Goal is the engine's read-only view of a group goal.
type Goal struct {
	ID         string
	Cadence    string
	Metric     MetricType
	Target     *float64
	ActiveDays uint8
}

// AppliesOn reports whether the goal expects a completion on date. ActiveDays
// is a weekday bitmask (Sunday = bit 0); zero means every day.
func (g Goal) AppliesOn(date time.Time) bool {
	if g.Cadence != CadenceDaily {
		return false
	}
	if g.ActiveDays == 0 {
		return true
	}
	return g.ActiveDays&(1<<uint(date.Weekday())) != 0
}

type ProgressEntry struct {
	UserID string
	GoalID string
	Value  float64
}

// TallyCompletions counts completed (member, goal) units for one date. Entries
// from non-members or for goals that do not apply that day are ignored, and a
// pair counts at most once however many entries it has.
func TallyCompletions(groupID string, date time.Time, members []string, goals []Goal, entries []ProgressEntry) DailyCompletion {
	applicable := make(map[string]Goal, len(goals))
	for _, goal := range goals {
		if goal.AppliesOn(date) {
			applicable[goal.ID] = goal
		}
	}
	memberSet := make(map[string]struct{}, len(members))
	for _, member := range members {
		memberSet[member] = struct{}{}
	}

	type pair struct{ user, goal string }
	done := map[pair]struct{}{}
	for _, entry := range entries {
		if _, ok := memberSet[entry.UserID]; !ok {
			continue
		}
		goal, ok := applicable[entry.GoalID]
		if !ok {
			continue
		}
		if IsCompleted(entry.Value, goal.Metric, goal.Target) {
			done[pair{entry.UserID, entry.GoalID}] = struct{}{}
		}
	}

	possible := len(memberSet) * len(applicable)
	return DailyCompletion{
		GroupID:        groupID,
		Date:           date,
		TotalPossible:  possible,
		TotalCompleted: len(done),
		GCR:            GCR(len(done), possible),
		MemberCount:    len(memberSet),
		GoalCount:      len(applicable),
	}
}
