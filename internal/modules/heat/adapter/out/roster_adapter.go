package out

import (
	"context"
	"time"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	rosterin "pursue/internal/modules/roster/port/in"
)

// RosterAdapter reads the roster module through its inbound port.
type RosterAdapter struct {
	roster rosterin.Usecase
}

func NewRosterAdapter(roster rosterin.Usecase) heatout.RosterReader {
	return &RosterAdapter{roster: roster}
}

func (a *RosterAdapter) CandidateGroups(ctx context.Context) ([]domain.GroupRef, error) {
	groups, err := a.roster.ListActiveGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GroupRef, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.GroupRef{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

func (a *RosterAdapter) Group(ctx context.Context, groupID string) (domain.GroupRef, error) {
	g, err := a.roster.GetGroup(ctx, groupID)
	if err != nil {
		return domain.GroupRef{}, err
	}
	return domain.GroupRef{ID: g.ID, Name: g.Name}, nil
}

func (a *RosterAdapter) ActiveMembers(ctx context.Context, groupID string) ([]string, error) {
	return a.roster.ActiveMembers(ctx, groupID)
}

func (a *RosterAdapter) IsActiveMember(ctx context.Context, groupID, userID string) (bool, error) {
	return a.roster.IsActiveMember(ctx, groupID, userID)
}

func (a *RosterAdapter) Goals(ctx context.Context, groupID string) ([]domain.Goal, error) {
	goals, err := a.roster.DailyGoals(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Goal, 0, len(goals))
	for _, g := range goals {
		out = append(out, domain.Goal{
			ID:         g.ID,
			Cadence:    g.Cadence,
			Metric:     domain.MetricType(g.MetricType),
			Target:     g.Target,
			ActiveDays: g.ActiveDays,
		})
	}
	return out, nil
}

func (a *RosterAdapter) ProgressOn(ctx context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error) {
	entries, err := a.roster.ProgressOn(ctx, groupID, date)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProgressEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.ProgressEntry{UserID: e.UserID, GoalID: e.GoalID, Value: e.Value})
	}
	return out, nil
}

type RosterEntitlements struct {
	roster rosterin.Usecase
}

func NewRosterEntitlements(roster rosterin.Usecase) heatout.Entitlements {
	return &RosterEntitlements{roster: roster}
}

func (e *RosterEntitlements) IsPremium(ctx context.Context, userID string) (bool, error) {
	return e.roster.IsPremium(ctx, userID)
}
