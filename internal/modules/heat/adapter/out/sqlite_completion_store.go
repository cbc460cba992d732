package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
)

type SQLiteCompletionStore struct {
	db *sql.DB
}

func NewSQLiteCompletionStore(db *sql.DB) (heatout.CompletionStore, error) {
	store := &SQLiteCompletionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCompletionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS daily_completion_records (
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  record_date TEXT NOT NULL,
  total_possible INTEGER NOT NULL CHECK (total_possible >= 0),
  total_completed INTEGER NOT NULL CHECK (total_completed >= 0),
  gcr REAL NOT NULL CHECK (gcr >= 0 AND gcr <= 1),
  member_count INTEGER NOT NULL,
  goal_count INTEGER NOT NULL,
  PRIMARY KEY (group_id, record_date)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create daily_completion_records table: %w", err)
	}
	return nil
}

func (s *SQLiteCompletionStore) Upsert(ctx context.Context, record domain.DailyCompletion) error {
	const stmt = `
INSERT INTO daily_completion_records (group_id, record_date, total_possible, total_completed, gcr, member_count, goal_count)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(group_id, record_date) DO UPDATE SET
  total_possible=excluded.total_possible,
  total_completed=excluded.total_completed,
  gcr=excluded.gcr,
  member_count=excluded.member_count,
  goal_count=excluded.goal_count;
`
	_, err := s.db.ExecContext(ctx, stmt,
		record.GroupID,
		clock.FormatDate(record.Date),
		record.TotalPossible,
		record.TotalCompleted,
		record.GCR,
		record.MemberCount,
		record.GoalCount,
	)
	if err != nil {
		return fmt.Errorf("upsert daily completion: %w", err)
	}
	return nil
}

const selectCompletion = `
SELECT group_id, record_date, total_possible, total_completed, gcr, member_count, goal_count
FROM daily_completion_records
`

func (s *SQLiteCompletionStore) Get(ctx context.Context, groupID string, date time.Time) (domain.DailyCompletion, error) {
	row := s.db.QueryRowContext(ctx, selectCompletion+` WHERE group_id = ? AND record_date = ?;`, groupID, clock.FormatDate(date))
	record, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyCompletion{}, fmt.Errorf("%w: completion for %s on %s", apperrors.ErrNotFound, groupID, clock.FormatDate(date))
	}
	if err != nil {
		return domain.DailyCompletion{}, fmt.Errorf("load daily completion: %w", err)
	}
	return record, nil
}

func (s *SQLiteCompletionStore) Range(ctx context.Context, groupID string, from, to time.Time) ([]domain.DailyCompletion, error) {
	rows, err := s.db.QueryContext(ctx,
		selectCompletion+` WHERE group_id = ? AND record_date >= ? AND record_date <= ? ORDER BY record_date ASC;`,
		groupID, clock.FormatDate(from), clock.FormatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily completions: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyCompletion{}
	for rows.Next() {
		record, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily completion: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily completions: %w", err)
	}
	return out, nil
}

func scanCompletion(row rowScanner) (domain.DailyCompletion, error) {
	var (
		record  domain.DailyCompletion
		rawDate string
	)
	if err := row.Scan(&record.GroupID, &rawDate, &record.TotalPossible, &record.TotalCompleted, &record.GCR, &record.MemberCount, &record.GoalCount); err != nil {
		return domain.DailyCompletion{}, err
	}
	date, err := clock.ParseDate(rawDate)
	if err != nil {
		return domain.DailyCompletion{}, err
	}
	record.Date = date
	return record, nil
}
