package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/logging"
)

type MomentumUpdater struct {
	clock       clock.Clock
	completions heatout.CompletionStore
	momentum    heatout.MomentumStore
	logger      *zap.Logger
}

func NewMomentumUpdater(clk clock.Clock, completions heatout.CompletionStore, momentum heatout.MomentumStore, logger *zap.Logger) *MomentumUpdater {
	return &MomentumUpdater{clock: clk, completions: completions, momentum: momentum, logger: logging.OrNop(logger)}
}

// InitGroup creates the cold-start momentum row. Re-initializing an existing
// group keeps its state.
func (u *MomentumUpdater) InitGroup(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return fmt.Errorf("%w: group id is required", apperrors.ErrInvalidInput)
	}
	if err := u.momentum.Init(ctx, groupID); err != nil {
		return fmt.Errorf("init momentum: %w", err)
	}
	return nil
}

type UpdateResult struct {
	Before  domain.GroupMomentum
	After   domain.GroupMomentum
	Skipped bool
}

// CalculateGroupHeat folds the GCR recorded for date into the group's score.
// A date at or before the last processed one is skipped so repeated runs
// cannot apply decay twice.
func (u *MomentumUpdater) CalculateGroupHeat(ctx context.Context, groupID string, date time.Time) (UpdateResult, error) {
	yesterday := 0.0
	record, err := u.completions.Get(ctx, groupID, date)
	switch {
	case err == nil:
		yesterday = record.GCR
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return UpdateResult{}, fmt.Errorf("load gcr for %s: %w", clock.FormatDate(date), err)
	}

	// Baseline window is [date-7, date-1], both ends inclusive; date itself is excluded.
	window, err := u.completions.Range(ctx, groupID, date.AddDate(0, 0, -domain.BaselineWindowDays), date.AddDate(0, 0, -1))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("load baseline window: %w", err)
	}
	gcrs := make([]float64, 0, len(window))
	for _, r := range window {
		gcrs = append(gcrs, r.GCR)
	}
	baseline := domain.Baseline(gcrs, yesterday)

	result := UpdateResult{}
	after, err := u.momentum.Transition(ctx, groupID, func(current domain.GroupMomentum) (domain.GroupMomentum, domain.Snapshot, bool, error) {
		result.Before = current
		if current.AlreadyProcessed(date) {
			result.Skipped = true
			return current, domain.Snapshot{}, false, nil
		}
		next := current.Advance(domain.DailyInput{
			Date:         date,
			YesterdayGCR: yesterday,
			BaselineGCR:  baseline,
			CalculatedAt: u.clock.Now(),
		})
		if err := next.Validate(); err != nil {
			return domain.GroupMomentum{}, domain.Snapshot{}, false, err
		}
		return next, domain.SnapshotOf(next, date, yesterday), true, nil
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update momentum: %w", err)
	}
	result.After = after
	if result.Skipped {
		u.logger.Info("heat already calculated for date",
			zap.String("group_id", groupID),
			zap.String("date", clock.FormatDate(date)),
		)
		return result, nil
	}
	u.logger.Debug("heat updated",
		zap.String("group_id", groupID),
		zap.String("date", clock.FormatDate(date)),
		zap.Float64("gcr", yesterday),
		zap.Float64("baseline", baseline),
		zap.Float64("score_before", result.Before.Score),
		zap.Float64("score_after", after.Score),
		zap.Int("tier", int(after.Tier)),
	)
	return result, nil
}
