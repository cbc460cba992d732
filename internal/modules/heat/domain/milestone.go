package domain

import "fmt"

type MilestoneKind string

const (
	MilestoneTierUp    MilestoneKind = "heat_tier_up"
	MilestoneSupernova MilestoneKind = "heat_supernova_reached"
	MilestoneStreak    MilestoneKind = "heat_streak_milestone"
)

const (
	StreakMilestoneEvery = 7
	supernovaBody        = "SUPERNOVA! The group is burning blue-hot!"
)

type Milestone struct {
	Kind       MilestoneKind
	GroupID    string
	Tier       Tier
	TierName   string
	StreakDays int
	Body       string
}

// DetectMilestones diffs two momentum states. Events come back in a fixed
// order: tier-up, supernova, streak.
func DetectMilestones(pre, post GroupMomentum) []Milestone {
	out := make([]Milestone, 0, 3)
	base := Milestone{GroupID: post.GroupID, Tier: post.Tier, TierName: TierName(post.Tier), StreakDays: post.StreakDays}

	if post.Tier > pre.Tier {
		m := base
		m.Kind = MilestoneTierUp
		m.Body = fmt.Sprintf("Group heat is rising! Now at %s.", m.TierName)
		out = append(out, m)
	}
	if post.Tier == TopTier && pre.Tier < TopTier {
		m := base
		m.Kind = MilestoneSupernova
		m.Body = supernovaBody
		out = append(out, m)
	}
	if post.StreakDays > 0 && post.StreakDays%StreakMilestoneEvery == 0 && post.StreakDays != pre.StreakDays {
		m := base
		m.Kind = MilestoneStreak
		m.Body = fmt.Sprintf("%d-day heat streak! Keep the momentum!", post.StreakDays)
		out = append(out, m)
	}
	return out
}
