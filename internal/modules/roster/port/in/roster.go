package in

import (
	"context"
	"time"

	"pursue/internal/modules/roster/dto"
)

type Usecase interface {
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
	CreateGroup(ctx context.Context, input dto.CreateGroupInput) (dto.GroupOutput, error)
	DeleteGroup(ctx context.Context, input dto.DeleteGroupInput) error
	ListActiveGroups(ctx context.Context) ([]dto.GroupOutput, error)
	GetGroup(ctx context.Context, groupID string) (dto.GroupOutput, error)
	ActiveMembers(ctx context.Context, groupID string) ([]string, error)
	IsActiveMember(ctx context.Context, groupID, userID string) (bool, error)
	// DailyGoals lists the group's non-archived daily goals.
	DailyGoals(ctx context.Context, groupID string) ([]dto.GoalOutput, error)
	ProgressOn(ctx context.Context, groupID string, date time.Time) ([]dto.ProgressOutput, error)
	IsPremium(ctx context.Context, userID string) (bool, error)
}
