package usecase

import (
	"context"
	"fmt"
	"time"

	heatdto "pursue/internal/modules/heat/dto"
	heatin "pursue/internal/modules/heat/port/in"
	"pursue/internal/modules/roster/domain"
	"pursue/internal/modules/roster/dto"
	rosterin "pursue/internal/modules/roster/port/in"
	"pursue/internal/modules/roster/service"
)

type Interactor struct {
	svc  *service.RosterService
	heat heatin.Usecase
}

func NewInteractor(svc *service.RosterService, heat heatin.Usecase) rosterin.Usecase {
	return &Interactor{svc: svc, heat: heat}
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error) {
	fixture, err := i.svc.Import(ctx, input.Path)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	for _, group := range fixture.Groups {
		if err := i.initHeat(ctx, group.ID); err != nil {
			return dto.ImportOutput{}, err
		}
	}
	return dto.ImportOutput{
		Users:       len(fixture.Users),
		Groups:      len(fixture.Groups),
		Memberships: len(fixture.Memberships),
		Goals:       len(fixture.Goals),
		Progress:    len(fixture.Progress),
	}, nil
}

func (i *Interactor) CreateGroup(ctx context.Context, input dto.CreateGroupInput) (dto.GroupOutput, error) {
	group, err := i.svc.CreateGroup(ctx, input.ID, input.Name)
	if err != nil {
		return dto.GroupOutput{}, err
	}
	if err := i.initHeat(ctx, group.ID); err != nil {
		return dto.GroupOutput{}, err
	}
	return toGroupOutput(group), nil
}

func (i *Interactor) initHeat(ctx context.Context, groupID string) error {
	if i.heat == nil {
		return nil
	}
	if err := i.heat.InitGroup(ctx, heatdto.InitGroupInput{GroupID: groupID}); err != nil {
		return fmt.Errorf("init heat for group %s: %w", groupID, err)
	}
	return nil
}

func (i *Interactor) DeleteGroup(ctx context.Context, input dto.DeleteGroupInput) error {
	return i.svc.DeleteGroup(ctx, input.GroupID, input.Hard)
}

func (i *Interactor) ListActiveGroups(ctx context.Context) ([]dto.GroupOutput, error) {
	groups, err := i.svc.ListActiveGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupOutput, 0, len(groups))
	for _, group := range groups {
		out = append(out, toGroupOutput(group))
	}
	return out, nil
}

func (i *Interactor) GetGroup(ctx context.Context, groupID string) (dto.GroupOutput, error) {
	group, err := i.svc.GetGroup(ctx, groupID)
	if err != nil {
		return dto.GroupOutput{}, err
	}
	return toGroupOutput(group), nil
}

func (i *Interactor) ActiveMembers(ctx context.Context, groupID string) ([]string, error) {
	return i.svc.ActiveMembers(ctx, groupID)
}

func (i *Interactor) IsActiveMember(ctx context.Context, groupID, userID string) (bool, error) {
	return i.svc.IsActiveMember(ctx, groupID, userID)
}

func (i *Interactor) DailyGoals(ctx context.Context, groupID string) ([]dto.GoalOutput, error) {
	goals, err := i.svc.DailyGoals(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GoalOutput, 0, len(goals))
	for _, goal := range goals {
		out = append(out, dto.GoalOutput{
			ID:         goal.ID,
			Title:      goal.Title,
			Cadence:    string(goal.Cadence),
			MetricType: string(goal.Metric),
			Target:     goal.TargetValue,
			ActiveDays: goal.ActiveDays,
		})
	}
	return out, nil
}

func (i *Interactor) ProgressOn(ctx context.Context, groupID string, date time.Time) ([]dto.ProgressOutput, error) {
	entries, err := i.svc.ProgressOn(ctx, groupID, date)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProgressOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.ProgressOutput{UserID: entry.UserID, GoalID: entry.GoalID, Value: entry.Value})
	}
	return out, nil
}

func (i *Interactor) IsPremium(ctx context.Context, userID string) (bool, error) {
	return i.svc.IsPremium(ctx, userID)
}

func toGroupOutput(group domain.Group) dto.GroupOutput {
	return dto.GroupOutput{ID: group.ID, Name: group.Name, DeletedAt: group.DeletedAt}
}
