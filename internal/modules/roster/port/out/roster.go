package out

import (
	"context"
	"time"

	"pursue/internal/modules/roster/domain"
)

type Store interface {
	UpsertUser(ctx context.Context, user domain.User) error
	UpsertGroup(ctx context.Context, group domain.Group) error
	UpsertMembership(ctx context.Context, membership domain.Membership) error
	UpsertGoal(ctx context.Context, goal domain.Goal) error
	UpsertProgress(ctx context.Context, entry domain.ProgressEntry) error

	FindGroup(ctx context.Context, groupID string) (domain.Group, error)
	ListActiveGroups(ctx context.Context) ([]domain.Group, error)
	ActiveMembers(ctx context.Context, groupID string) ([]string, error)
	GoalsForGroup(ctx context.Context, groupID string) ([]domain.Goal, error)
	ProgressOn(ctx context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error)
	FindUser(ctx context.Context, userID string) (domain.User, error)

	SoftDeleteGroup(ctx context.Context, groupID string, at time.Time) error
	// HardDeleteGroup removes the group row; dependent rows go with it.
	HardDeleteGroup(ctx context.Context, groupID string) error
}

type FixtureSource interface {
	Load(ctx context.Context, path string) (domain.Fixture, error)
}
