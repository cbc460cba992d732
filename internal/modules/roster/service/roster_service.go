package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pursue/internal/modules/roster/domain"
	rosterout "pursue/internal/modules/roster/port/out"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/id"
)

type RosterService struct {
	clock    clock.Clock
	idGen    id.Generator
	store    rosterout.Store
	fixtures rosterout.FixtureSource
}

func NewRosterService(clock clock.Clock, idGen id.Generator, store rosterout.Store, fixtures rosterout.FixtureSource) *RosterService {
	return &RosterService{clock: clock, idGen: idGen, store: store, fixtures: fixtures}
}

// Import validates a whole fixture before writing any of it, then upserts in
// dependency order.
func (s *RosterService) Import(ctx context.Context, path string) (domain.Fixture, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Fixture{}, fmt.Errorf("%w: fixture path is required", apperrors.ErrInvalidInput)
	}
	fixture, err := s.fixtures.Load(ctx, path)
	if err != nil {
		return domain.Fixture{}, err
	}
	now := s.clock.Now()
	for i := range fixture.Groups {
		if fixture.Groups[i].CreatedAt.IsZero() {
			fixture.Groups[i].CreatedAt = now
		}
	}
	for i := range fixture.Progress {
		if fixture.Progress[i].ID == "" {
			fixture.Progress[i].ID = s.idGen.New()
		}
	}
	if err := validateFixture(fixture); err != nil {
		return domain.Fixture{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	for _, user := range fixture.Users {
		if err := s.store.UpsertUser(ctx, user); err != nil {
			return domain.Fixture{}, err
		}
	}
	for _, group := range fixture.Groups {
		if err := s.store.UpsertGroup(ctx, group); err != nil {
			return domain.Fixture{}, err
		}
	}
	for _, membership := range fixture.Memberships {
		if err := s.store.UpsertMembership(ctx, membership); err != nil {
			return domain.Fixture{}, err
		}
	}
	for _, goal := range fixture.Goals {
		if err := s.store.UpsertGoal(ctx, goal); err != nil {
			return domain.Fixture{}, err
		}
	}
	for _, entry := range fixture.Progress {
		if err := s.store.UpsertProgress(ctx, entry); err != nil {
			return domain.Fixture{}, err
		}
	}
	return fixture, nil
}

func validateFixture(f domain.Fixture) error {
	for _, user := range f.Users {
		if err := user.Validate(); err != nil {
			return err
		}
	}
	for _, group := range f.Groups {
		if err := group.Validate(); err != nil {
			return err
		}
	}
	for _, membership := range f.Memberships {
		if err := membership.Validate(); err != nil {
			return err
		}
	}
	for _, goal := range f.Goals {
		if err := goal.Validate(); err != nil {
			return err
		}
	}
	for _, entry := range f.Progress {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RosterService) CreateGroup(ctx context.Context, groupID, name string) (domain.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		groupID = s.idGen.New()
	}
	group := domain.Group{ID: groupID, Name: strings.TrimSpace(name), CreatedAt: s.clock.Now()}
	if err := group.Validate(); err != nil {
		return domain.Group{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.UpsertGroup(ctx, group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// DeleteGroup soft-deletes by default. A hard delete removes the group and
// everything keyed to it.
func (s *RosterService) DeleteGroup(ctx context.Context, groupID string, hard bool) error {
	if _, err := s.store.FindGroup(ctx, groupID); err != nil {
		return err
	}
	if hard {
		return s.store.HardDeleteGroup(ctx, groupID)
	}
	return s.store.SoftDeleteGroup(ctx, groupID, s.clock.Now())
}

func (s *RosterService) ListActiveGroups(ctx context.Context) ([]domain.Group, error) {
	return s.store.ListActiveGroups(ctx)
}

// GetGroup treats soft-deleted groups as missing.
func (s *RosterService) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	group, err := s.store.FindGroup(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.Deleted() {
		return domain.Group{}, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return group, nil
}

func (s *RosterService) ActiveMembers(ctx context.Context, groupID string) ([]string, error) {
	return s.store.ActiveMembers(ctx, groupID)
}

func (s *RosterService) IsActiveMember(ctx context.Context, groupID, userID string) (bool, error) {
	members, err := s.store.ActiveMembers(ctx, groupID)
	if err != nil {
		return false, err
	}
	for _, member := range members {
		if member == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *RosterService) DailyGoals(ctx context.Context, groupID string) ([]domain.Goal, error) {
	goals, err := s.store.GoalsForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Goal, 0, len(goals))
	for _, goal := range goals {
		if goal.Archived || goal.Cadence != domain.CadenceDaily {
			continue
		}
		out = append(out, goal)
	}
	return out, nil
}

func (s *RosterService) ProgressOn(ctx context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error) {
	return s.store.ProgressOn(ctx, groupID, date)
}

// IsPremium reports false for unknown users.
func (s *RosterService) IsPremium(ctx context.Context, userID string) (bool, error) {
	user, err := s.store.FindUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsPremium, nil
}
