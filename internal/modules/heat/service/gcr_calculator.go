package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/logging"
)

type GCRCalculator struct {
	roster      heatout.RosterReader
	completions heatout.CompletionStore
	logger      *zap.Logger
}

func NewGCRCalculator(roster heatout.RosterReader, completions heatout.CompletionStore, logger *zap.Logger) *GCRCalculator {
	return &GCRCalculator{roster: roster, completions: completions, logger: logging.OrNop(logger)}
}

// ComputeAndStoreGCR aggregates one group's completions for date and upserts
// the daily record, replacing any earlier result for the same date.
func (c *GCRCalculator) ComputeAndStoreGCR(ctx context.Context, groupID string, date time.Time) (domain.DailyCompletion, error) {
	members, err := c.roster.ActiveMembers(ctx, groupID)
	if err != nil {
		return domain.DailyCompletion{}, fmt.Errorf("load active members: %w", err)
	}
	goals, err := c.roster.Goals(ctx, groupID)
	if err != nil {
		return domain.DailyCompletion{}, fmt.Errorf("load goals: %w", err)
	}
	var entries []domain.ProgressEntry
	if len(members) > 0 && len(goals) > 0 {
		entries, err = c.roster.ProgressOn(ctx, groupID, date)
		if err != nil {
			return domain.DailyCompletion{}, fmt.Errorf("load progress: %w", err)
		}
	}

	record := domain.TallyCompletions(groupID, date, members, goals, entries)
	if err := record.Validate(); err != nil {
		return domain.DailyCompletion{}, fmt.Errorf("daily completion: %w", err)
	}
	if err := c.completions.Upsert(ctx, record); err != nil {
		return domain.DailyCompletion{}, err
	}
	c.logger.Debug("gcr stored",
		zap.String("group_id", groupID),
		zap.String("date", record.Date.Format("2006-01-02")),
		zap.Int("possible", record.TotalPossible),
		zap.Int("completed", record.TotalCompleted),
		zap.Float64("gcr", record.GCR),
	)
	return record, nil
}
