package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pursue/internal/modules/roster/domain"
	rosterout "pursue/internal/modules/roster/port/out"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
)

const timestampLayout = time.RFC3339Nano

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (rosterout.Store, error) {
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL DEFAULT '',
  is_premium INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL,
  deleted_at TEXT
);
CREATE TABLE IF NOT EXISTS group_memberships (
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status TEXT NOT NULL,
  PRIMARY KEY (group_id, user_id)
);
CREATE TABLE IF NOT EXISTS goals (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  title TEXT NOT NULL DEFAULT '',
  cadence TEXT NOT NULL,
  metric_type TEXT NOT NULL,
  target_value REAL,
  active_days INTEGER NOT NULL DEFAULT 0,
  archived INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS progress_entries (
  id TEXT PRIMARY KEY,
  goal_id TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  value REAL NOT NULL,
  logged_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_progress_goal_date ON progress_entries (goal_id, logged_date);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create roster tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, user domain.User) error {
	const stmt = `
INSERT INTO users (id, display_name, is_premium) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET display_name=excluded.display_name, is_premium=excluded.is_premium;
`
	if _, err := s.db.ExecContext(ctx, stmt, user.ID, user.DisplayName, boolInt(user.IsPremium)); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertGroup(ctx context.Context, group domain.Group) error {
	const stmt = `
INSERT INTO groups (id, name, created_at, deleted_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, deleted_at=excluded.deleted_at;
`
	var deletedAt any
	if group.DeletedAt != nil {
		deletedAt = group.DeletedAt.UTC().Format(timestampLayout)
	}
	if _, err := s.db.ExecContext(ctx, stmt, group.ID, group.Name, group.CreatedAt.UTC().Format(timestampLayout), deletedAt); err != nil {
		return fmt.Errorf("upsert group %s: %w", group.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertMembership(ctx context.Context, membership domain.Membership) error {
	const stmt = `
INSERT INTO group_memberships (group_id, user_id, status) VALUES (?, ?, ?)
ON CONFLICT(group_id, user_id) DO UPDATE SET status=excluded.status;
`
	if _, err := s.db.ExecContext(ctx, stmt, membership.GroupID, membership.UserID, string(membership.Status)); err != nil {
		return fmt.Errorf("upsert membership %s/%s: %w", membership.GroupID, membership.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertGoal(ctx context.Context, goal domain.Goal) error {
	const stmt = `
INSERT INTO goals (id, group_id, title, cadence, metric_type, target_value, active_days, archived)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  group_id=excluded.group_id,
  title=excluded.title,
  cadence=excluded.cadence,
  metric_type=excluded.metric_type,
  target_value=excluded.target_value,
  active_days=excluded.active_days,
  archived=excluded.archived;
`
	var target any
	if goal.TargetValue != nil {
		target = *goal.TargetValue
	}
	_, err := s.db.ExecContext(ctx, stmt,
		goal.ID,
		goal.GroupID,
		goal.Title,
		string(goal.Cadence),
		string(goal.Metric),
		target,
		int(goal.ActiveDays),
		boolInt(goal.Archived),
	)
	if err != nil {
		return fmt.Errorf("upsert goal %s: %w", goal.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertProgress(ctx context.Context, entry domain.ProgressEntry) error {
	const stmt = `
INSERT INTO progress_entries (id, goal_id, user_id, value, logged_date) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  goal_id=excluded.goal_id,
  user_id=excluded.user_id,
  value=excluded.value,
  logged_date=excluded.logged_date;
`
	if _, err := s.db.ExecContext(ctx, stmt, entry.ID, entry.GoalID, entry.UserID, entry.Value, clock.FormatDate(entry.LoggedDate)); err != nil {
		return fmt.Errorf("upsert progress %s: %w", entry.ID, err)
	}
	return nil
}

func (s *SQLiteStore) FindGroup(ctx context.Context, groupID string) (domain.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at, deleted_at FROM groups WHERE id = ?;`, groupID)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("load group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *SQLiteStore) ListActiveGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at, deleted_at FROM groups WHERE deleted_at IS NULL ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()
	out := []domain.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ActiveMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM group_memberships WHERE group_id = ? AND status = ? ORDER BY user_id ASC;`,
		groupID, string(domain.MembershipActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GoalsForGroup(ctx context.Context, groupID string) ([]domain.Goal, error) {
	const query = `
SELECT id, group_id, title, cadence, metric_type, target_value, active_days, archived
FROM goals WHERE group_id = ? ORDER BY id ASC;
`
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	out := []domain.Goal{}
	for rows.Next() {
		var (
			goal     domain.Goal
			cadence  string
			metric   string
			target   sql.NullFloat64
			days     int
			archived int
		)
		if err := rows.Scan(&goal.ID, &goal.GroupID, &goal.Title, &cadence, &metric, &target, &days, &archived); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goal.Cadence = domain.Cadence(cadence)
		goal.Metric = domain.MetricType(metric)
		if target.Valid {
			v := target.Float64
			goal.TargetValue = &v
		}
		goal.ActiveDays = uint8(days)
		goal.Archived = archived != 0
		out = append(out, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ProgressOn(ctx context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error) {
	const query = `
SELECT p.id, p.goal_id, p.user_id, p.value, p.logged_date
FROM progress_entries p
JOIN goals g ON g.id = p.goal_id
WHERE g.group_id = ? AND p.logged_date = ?
ORDER BY p.id ASC;
`
	rows, err := s.db.QueryContext(ctx, query, groupID, clock.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()
	out := []domain.ProgressEntry{}
	for rows.Next() {
		var (
			entry   domain.ProgressEntry
			rawDate string
		)
		if err := rows.Scan(&entry.ID, &entry.GoalID, &entry.UserID, &entry.Value, &rawDate); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		logged, err := clock.ParseDate(rawDate)
		if err != nil {
			return nil, err
		}
		entry.LoggedDate = logged
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) FindUser(ctx context.Context, userID string) (domain.User, error) {
	var (
		user    domain.User
		premium int
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, display_name, is_premium FROM users WHERE id = ?;`, userID).
		Scan(&user.ID, &user.DisplayName, &premium)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	user.IsPremium = premium != 0
	return user, nil
}

func (s *SQLiteStore) SoftDeleteGroup(ctx context.Context, groupID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE groups SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL;`, at.UTC().Format(timestampLayout), groupID)
	if err != nil {
		return fmt.Errorf("soft delete group %s: %w", groupID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return nil
}

func (s *SQLiteStore) HardDeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?;`, groupID)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", groupID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (domain.Group, error) {
	var (
		group     domain.Group
		createdAt string
		deletedAt sql.NullString
	)
	if err := row.Scan(&group.ID, &group.Name, &createdAt, &deletedAt); err != nil {
		return domain.Group{}, err
	}
	created, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return domain.Group{}, fmt.Errorf("parse created_at: %w", err)
	}
	group.CreatedAt = created
	if deletedAt.Valid {
		deleted, err := time.Parse(timestampLayout, deletedAt.String)
		if err != nil {
			return domain.Group{}, fmt.Errorf("parse deleted_at: %w", err)
		}
		group.DeletedAt = &deleted
	}
	return group, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
