package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	rosterout "pursue/internal/modules/roster/adapter/out"
	"pursue/internal/modules/roster/domain"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/sqlitedb"
)

func TestFixtureLoadAndStoreQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "pursue.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := rosterout.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	fixture, err := rosterout.NewYAMLFixtureSource().Load(ctx, filepath.Join("testdata", "roster.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(fixture.Users) != 3 || len(fixture.Groups) != 2 || len(fixture.Goals) != 4 || len(fixture.Memberships) != 3 {
		t.Fatalf("unexpected fixture shape: %+v", fixture)
	}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, u := range fixture.Users {
		if err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("upsert user: %v", err)
		}
	}
	for _, g := range fixture.Groups {
		g.CreatedAt = now
		if err := store.UpsertGroup(ctx, g); err != nil {
			t.Fatalf("upsert group: %v", err)
		}
	}
	for _, m := range fixture.Memberships {
		if err := store.UpsertMembership(ctx, m); err != nil {
			t.Fatalf("upsert membership: %v", err)
		}
	}
	for _, g := range fixture.Goals {
		if err := store.UpsertGoal(ctx, g); err != nil {
			t.Fatalf("upsert goal: %v", err)
		}
	}
	for _, p := range fixture.Progress {
		if err := store.UpsertProgress(ctx, p); err != nil {
			t.Fatalf("upsert progress: %v", err)
		}
	}

	members, err := store.ActiveMembers(ctx, "early-risers")
	if err != nil {
		t.Fatalf("active members: %v", err)
	}
	if len(members) != 2 || members[0] != "ana" || members[1] != "ben" {
		t.Fatalf("unexpected members: %v", members)
	}

	goals, err := store.GoalsForGroup(ctx, "early-risers")
	if err != nil {
		t.Fatalf("goals: %v", err)
	}
	var run domain.Goal
	for _, g := range goals {
		if g.ID == "run-5k" {
			run = g
		}
	}
	if run.TargetValue == nil || *run.TargetValue != 5 {
		t.Fatalf("expected run target 5, got %+v", run)
	}
	wantMask := uint8(1<<time.Monday | 1<<time.Wednesday | 1<<time.Friday)
	if run.ActiveDays != wantMask {
		t.Fatalf("expected mask %07b, got %07b", wantMask, run.ActiveDays)
	}

	progress, err := store.ProgressOn(ctx, "early-risers", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(progress))
	}

	user, err := store.FindUser(ctx, "ana")
	if err != nil || !user.IsPremium {
		t.Fatalf("expected premium ana, got %+v %v", user, err)
	}
	if _, err := store.FindUser(ctx, "nobody"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.SoftDeleteGroup(ctx, "quiet", now); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	active, err := store.ListActiveGroups(ctx)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(active) != 1 || active[0].ID != "early-risers" {
		t.Fatalf("unexpected active groups: %+v", active)
	}
	quiet, err := store.FindGroup(ctx, "quiet")
	if err != nil || !quiet.Deleted() {
		t.Fatalf("expected soft-deleted group, got %+v %v", quiet, err)
	}

	if err := store.HardDeleteGroup(ctx, "early-risers"); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	goals, err = store.GoalsForGroup(ctx, "early-risers")
	if err != nil || len(goals) != 0 {
		t.Fatalf("expected goals cascade, got %v %v", goals, err)
	}
	progress, err = store.ProgressOn(ctx, "early-risers", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil || len(progress) != 0 {
		t.Fatalf("expected progress cascade, got %v %v", progress, err)
	}
	if err := store.HardDeleteGroup(ctx, "early-risers"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestFixtureRejectsBadWeekday(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "groups:\n  - id: g\n    name: G\n    goals:\n      - id: x\n        days: [someday]\n")
	if _, err := rosterout.NewYAMLFixtureSource().Load(context.Background(), path); err == nil {
		t.Fatalf("expected weekday error")
	}
}
