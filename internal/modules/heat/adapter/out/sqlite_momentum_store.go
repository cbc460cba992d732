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

const timestampLayout = time.RFC3339Nano

type SQLiteMomentumStore struct {
	db *sql.DB
}

func NewSQLiteMomentumStore(db *sql.DB) (heatout.MomentumStore, error) {
	store := &SQLiteMomentumStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteMomentumStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS group_momentum (
  group_id TEXT PRIMARY KEY REFERENCES groups(id) ON DELETE CASCADE,
  score REAL NOT NULL DEFAULT 0 CHECK (score >= 0 AND score <= 100),
  tier INTEGER NOT NULL DEFAULT 0 CHECK (tier >= 0 AND tier <= 7),
  streak_days INTEGER NOT NULL DEFAULT 0 CHECK (streak_days >= 0),
  peak_score REAL NOT NULL DEFAULT 0,
  peak_date TEXT,
  last_calculated_at TEXT,
  last_processed_date TEXT,
  yesterday_gcr REAL,
  baseline_gcr REAL
);
CREATE TABLE IF NOT EXISTS group_heat_snapshots (
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  snapshot_date TEXT NOT NULL,
  score REAL NOT NULL,
  tier INTEGER NOT NULL,
  gcr REAL NOT NULL,
  streak_days INTEGER NOT NULL,
  PRIMARY KEY (group_id, snapshot_date)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create momentum tables: %w", err)
	}
	return nil
}

func (s *SQLiteMomentumStore) Init(ctx context.Context, groupID string) error {
	const stmt = `INSERT INTO group_momentum (group_id) VALUES (?) ON CONFLICT(group_id) DO NOTHING;`
	if _, err := s.db.ExecContext(ctx, stmt, groupID); err != nil {
		return fmt.Errorf("init momentum %s: %w", groupID, err)
	}
	return nil
}

const selectMomentum = `
SELECT group_id, score, tier, streak_days, peak_score, peak_date, last_calculated_at, last_processed_date, yesterday_gcr, baseline_gcr
FROM group_momentum WHERE group_id = ?;
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteMomentumStore) Get(ctx context.Context, groupID string) (domain.GroupMomentum, error) {
	m, err := scanMomentum(s.db.QueryRowContext(ctx, selectMomentum, groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GroupMomentum{}, fmt.Errorf("%w: momentum for group %s", apperrors.ErrNotFound, groupID)
	}
	if err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("load momentum %s: %w", groupID, err)
	}
	return m, nil
}

func (s *SQLiteMomentumStore) Transition(ctx context.Context, groupID string, fn heatout.TransitionFunc) (domain.GroupMomentum, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("begin momentum tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanMomentum(tx.QueryRowContext(ctx, selectMomentum, groupID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = domain.NewGroupMomentum(groupID)
	case err != nil:
		return domain.GroupMomentum{}, fmt.Errorf("load momentum %s: %w", groupID, err)
	}

	next, snapshot, commit, err := fn(current)
	if err != nil {
		return domain.GroupMomentum{}, err
	}
	if !commit {
		return current, nil
	}

	const upsert = `
INSERT INTO group_momentum (group_id, score, tier, streak_days, peak_score, peak_date, last_calculated_at, last_processed_date, yesterday_gcr, baseline_gcr)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(group_id) DO UPDATE SET
  score=excluded.score,
  tier=excluded.tier,
  streak_days=excluded.streak_days,
  peak_score=excluded.peak_score,
  peak_date=excluded.peak_date,
  last_calculated_at=excluded.last_calculated_at,
  last_processed_date=excluded.last_processed_date,
  yesterday_gcr=excluded.yesterday_gcr,
  baseline_gcr=excluded.baseline_gcr;
`
	_, err = tx.ExecContext(ctx, upsert,
		groupID,
		next.Score,
		int(next.Tier),
		next.StreakDays,
		next.PeakScore,
		nullDate(next.PeakDate),
		nullTimestamp(next.LastCalculatedAt),
		nullDate(next.LastProcessedDate),
		nullFloat(next.YesterdayGCR),
		nullFloat(next.BaselineGCR),
	)
	if err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("upsert momentum %s: %w", groupID, err)
	}

	const snap = `
INSERT INTO group_heat_snapshots (group_id, snapshot_date, score, tier, gcr, streak_days)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(group_id, snapshot_date) DO UPDATE SET
  score=excluded.score,
  tier=excluded.tier,
  gcr=excluded.gcr,
  streak_days=excluded.streak_days;
`
	_, err = tx.ExecContext(ctx, snap,
		groupID,
		clock.FormatDate(snapshot.Date),
		snapshot.Score,
		int(snapshot.Tier),
		snapshot.GCR,
		snapshot.StreakDays,
	)
	if err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("insert snapshot %s: %w", groupID, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("commit momentum tx: %w", err)
	}
	next.GroupID = groupID
	return next, nil
}

func (s *SQLiteMomentumStore) Snapshots(ctx context.Context, groupID string, from, to time.Time) ([]domain.Snapshot, error) {
	const query = `
SELECT snapshot_date, score, tier, gcr, streak_days
FROM group_heat_snapshots
WHERE group_id = ? AND snapshot_date >= ? AND snapshot_date <= ?
ORDER BY snapshot_date ASC;
`
	rows, err := s.db.QueryContext(ctx, query, groupID, clock.FormatDate(from), clock.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []domain.Snapshot{}
	for rows.Next() {
		var (
			rawDate string
			snap    domain.Snapshot
			tier    int
		)
		if err := rows.Scan(&rawDate, &snap.Score, &tier, &snap.GCR, &snap.StreakDays); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		date, err := clock.ParseDate(rawDate)
		if err != nil {
			return nil, err
		}
		snap.GroupID = groupID
		snap.Date = date
		snap.Tier = domain.Tier(tier)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

func scanMomentum(row rowScanner) (domain.GroupMomentum, error) {
	var (
		m                                 domain.GroupMomentum
		tier                              int
		peakDate, calculatedAt, processed sql.NullString
		yesterday, baseline               sql.NullFloat64
	)
	if err := row.Scan(&m.GroupID, &m.Score, &tier, &m.StreakDays, &m.PeakScore, &peakDate, &calculatedAt, &processed, &yesterday, &baseline); err != nil {
		return domain.GroupMomentum{}, err
	}
	m.Tier = domain.Tier(tier)
	var err error
	if m.PeakDate, err = parseNullDate(peakDate); err != nil {
		return domain.GroupMomentum{}, err
	}
	if m.LastProcessedDate, err = parseNullDate(processed); err != nil {
		return domain.GroupMomentum{}, err
	}
	if calculatedAt.Valid {
		ts, err := time.Parse(timestampLayout, calculatedAt.String)
		if err != nil {
			return domain.GroupMomentum{}, fmt.Errorf("parse last_calculated_at: %w", err)
		}
		m.LastCalculatedAt = &ts
	}
	if yesterday.Valid {
		v := yesterday.Float64
		m.YesterdayGCR = &v
	}
	if baseline.Valid {
		v := baseline.Float64
		m.BaselineGCR = &v
	}
	return m, nil
}

func parseNullDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	d, err := clock.ParseDate(raw.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return clock.FormatDate(*d)
}

func nullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
