package out

import (
	"context"
	"time"

	"pursue/internal/modules/heat/domain"
)

// TransitionFunc receives the stored momentum and returns the state to persist.
// Returning commit=false leaves the row untouched.
type TransitionFunc func(current domain.GroupMomentum) (next domain.GroupMomentum, snapshot domain.Snapshot, commit bool, err error)

type MomentumStore interface {
	Init(ctx context.Context, groupID string) error
	Get(ctx context.Context, groupID string) (domain.GroupMomentum, error)
	// Transition runs fn and persists its result in one transaction. A group
	// with no row yet starts from a zero-initialized momentum.
	Transition(ctx context.Context, groupID string, fn TransitionFunc) (domain.GroupMomentum, error)
	Snapshots(ctx context.Context, groupID string, from, to time.Time) ([]domain.Snapshot, error)
}

type CompletionStore interface {
	Upsert(ctx context.Context, record domain.DailyCompletion) error
	Get(ctx context.Context, groupID string, date time.Time) (domain.DailyCompletion, error)
	Range(ctx context.Context, groupID string, from, to time.Time) ([]domain.DailyCompletion, error)
}

// RosterReader exposes the collaborator-owned tables the engine consumes.
type RosterReader interface {
	CandidateGroups(ctx context.Context) ([]domain.GroupRef, error)
	Group(ctx context.Context, groupID string) (domain.GroupRef, error)
	ActiveMembers(ctx context.Context, groupID string) ([]string, error)
	IsActiveMember(ctx context.Context, groupID, userID string) (bool, error)
	Goals(ctx context.Context, groupID string) ([]domain.Goal, error)
	ProgressOn(ctx context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error)
}

type Entitlements interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type PushMessage struct {
	UserID  string
	GroupID string
	Type    string
	Title   string
	Body    string
	Data    map[string]string
}

type PushSender interface {
	SendPush(ctx context.Context, message PushMessage) error
}
