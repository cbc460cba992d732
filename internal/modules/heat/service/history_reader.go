package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/metrics"
)

const (
	MinHistoryDays     = 1
	MaxHistoryDays     = 90
	DefaultHistoryDays = 30
)

type HistoryReader struct {
	roster       heatout.RosterReader
	momentum     heatout.MomentumStore
	entitlements heatout.Entitlements
	clock        clock.Clock
	location     *time.Location
	defaultDays  int
	metrics      *metrics.Heat
}

func NewHistoryReader(roster heatout.RosterReader, momentum heatout.MomentumStore, entitlements heatout.Entitlements, clk clock.Clock, loc *time.Location, defaultDays int, m *metrics.Heat) *HistoryReader {
	if loc == nil {
		loc = time.UTC
	}
	if defaultDays < MinHistoryDays || defaultDays > MaxHistoryDays {
		defaultDays = DefaultHistoryDays
	}
	if m == nil {
		m = metrics.NewNopHeat()
	}
	return &HistoryReader{
		roster:       roster,
		momentum:     momentum,
		entitlements: entitlements,
		clock:        clk,
		location:     loc,
		defaultDays:  defaultDays,
		metrics:      m,
	}
}

type HistoryView struct {
	Momentum        domain.GroupMomentum
	Snapshots       []domain.Snapshot
	Entitled        bool
	PremiumRequired bool
}

// History assembles the momentum read model for a member of the group. The
// snapshot series is only loaded for entitled callers.
func (r *HistoryReader) History(ctx context.Context, groupID, callerID string, days int) (HistoryView, error) {
	if days == 0 {
		days = r.defaultDays
	}
	if days < MinHistoryDays || days > MaxHistoryDays {
		return HistoryView{}, fmt.Errorf("%w: days must be between %d and %d", apperrors.ErrInvalidInput, MinHistoryDays, MaxHistoryDays)
	}
	if strings.TrimSpace(callerID) == "" {
		return HistoryView{}, fmt.Errorf("%w: caller is required", apperrors.ErrUnauthorized)
	}
	if _, err := r.roster.Group(ctx, groupID); err != nil {
		return HistoryView{}, err
	}
	member, err := r.roster.IsActiveMember(ctx, groupID, callerID)
	if err != nil {
		return HistoryView{}, err
	}
	if !member {
		return HistoryView{}, fmt.Errorf("%w: caller is not an active member of group %s", apperrors.ErrForbidden, groupID)
	}

	momentum, err := r.current(ctx, groupID)
	if err != nil {
		return HistoryView{}, err
	}
	view := HistoryView{Momentum: momentum}

	premium, err := r.entitlements.IsPremium(ctx, callerID)
	if err != nil {
		return HistoryView{}, fmt.Errorf("check entitlement: %w", err)
	}
	r.metrics.HistoryRequests.WithLabelValues(strconv.FormatBool(premium)).Inc()
	if !premium {
		view.PremiumRequired = true
		return view, nil
	}

	// The newest snapshot a batch can have written is for yesterday.
	to := clock.Yesterday(r.clock.Now(), r.location)
	from := to.AddDate(0, 0, -(days - 1))
	snapshots, err := r.momentum.Snapshots(ctx, groupID, from, to)
	if err != nil {
		return HistoryView{}, fmt.Errorf("load snapshots: %w", err)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Date.Before(snapshots[j].Date) })
	if len(snapshots) > days {
		snapshots = snapshots[len(snapshots)-days:]
	}
	view.Entitled = true
	view.Snapshots = snapshots
	return view, nil
}

func (r *HistoryReader) Summary(ctx context.Context, groupID string) (domain.GroupMomentum, error) {
	if _, err := r.roster.Group(ctx, groupID); err != nil {
		return domain.GroupMomentum{}, err
	}
	return r.current(ctx, groupID)
}

type BoardRow struct {
	Group    domain.GroupRef
	Momentum domain.GroupMomentum
}

// Board lists every candidate group, hottest first.
func (r *HistoryReader) Board(ctx context.Context) ([]BoardRow, error) {
	groups, err := r.roster.CandidateGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	rows := make([]BoardRow, 0, len(groups))
	for _, group := range groups {
		momentum, err := r.current(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, BoardRow{Group: group, Momentum: momentum})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Momentum.Score != rows[j].Momentum.Score {
			return rows[i].Momentum.Score > rows[j].Momentum.Score
		}
		return rows[i].Group.Name < rows[j].Group.Name
	})
	return rows, nil
}

// current treats a group that was never initialized as cold.
func (r *HistoryReader) current(ctx context.Context, groupID string) (domain.GroupMomentum, error) {
	momentum, err := r.momentum.Get(ctx, groupID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.NewGroupMomentum(groupID), nil
	}
	if err != nil {
		return domain.GroupMomentum{}, fmt.Errorf("load momentum: %w", err)
	}
	return momentum, nil
}
