package usecase

import (
	"context"
	"time"

	"pursue/internal/modules/heat/domain"
	"pursue/internal/modules/heat/dto"
	heatin "pursue/internal/modules/heat/port/in"
	"pursue/internal/modules/heat/service"
	"pursue/internal/platform/clock"
)

type Interactor struct {
	orchestrator *service.Orchestrator
	updater      *service.MomentumUpdater
	history      *service.HistoryReader
}

func NewInteractor(orchestrator *service.Orchestrator, updater *service.MomentumUpdater, history *service.HistoryReader) heatin.Usecase {
	return &Interactor{orchestrator: orchestrator, updater: updater, history: history}
}

func (i *Interactor) RunBatch(ctx context.Context, input dto.BatchInput) (dto.BatchOutput, error) {
	result, err := i.orchestrator.RunBatch(ctx, input.Date)
	if err != nil {
		return dto.BatchOutput{}, err
	}
	out := dto.BatchOutput{
		Success:   true,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
		RunID:     result.RunID,
		Date:      clock.FormatDate(result.Date),
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, dto.GroupFailure{GroupID: f.GroupID, Error: f.Err.Error()})
	}
	return out, nil
}

func (i *Interactor) CalculateGroup(ctx context.Context, input dto.CalculateInput) (dto.CalculateOutput, error) {
	outcome, day, err := i.orchestrator.CalculateGroup(ctx, input.GroupID, input.Date)
	if err != nil {
		return dto.CalculateOutput{}, err
	}
	out := dto.CalculateOutput{
		GroupID:    input.GroupID,
		Date:       clock.FormatDate(day),
		GCR:        outcome.Completion.GCR,
		Skipped:    outcome.Update.Skipped,
		Heat:       toSummary(outcome.Update.After),
		Milestones: make([]string, 0, len(outcome.Milestones)),
	}
	for _, m := range outcome.Milestones {
		out.Milestones = append(out.Milestones, string(m.Kind))
	}
	return out, nil
}

func (i *Interactor) InitGroup(ctx context.Context, input dto.InitGroupInput) error {
	return i.updater.InitGroup(ctx, input.GroupID)
}

func (i *Interactor) Summary(ctx context.Context, groupID string) (dto.Summary, error) {
	momentum, err := i.history.Summary(ctx, groupID)
	if err != nil {
		return dto.Summary{}, err
	}
	return toSummary(momentum), nil
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) (dto.HistoryOutput, error) {
	view, err := i.history.History(ctx, input.GroupID, input.CallerID, input.Days)
	if err != nil {
		return dto.HistoryOutput{}, err
	}
	m := view.Momentum
	out := dto.HistoryOutput{
		Current: dto.CurrentView{
			Score:      m.Score,
			Tier:       int(m.Tier),
			TierName:   domain.TierName(m.Tier),
			StreakDays: m.StreakDays,
			PeakScore:  m.PeakScore,
		},
		PremiumRequired: view.PremiumRequired,
	}
	if !view.Entitled {
		return out, nil
	}
	out.History = make([]dto.HistoryPoint, 0, len(view.Snapshots))
	for _, snap := range view.Snapshots {
		out.History = append(out.History, dto.HistoryPoint{
			Date:  clock.FormatDate(snap.Date),
			Score: snap.Score,
			Tier:  int(snap.Tier),
			GCR:   snap.GCR,
		})
	}
	out.Stats = &dto.StatsView{
		PeakScore:    m.PeakScore,
		PeakDate:     formatOptionalDate(m.PeakDate),
		YesterdayGCR: m.YesterdayGCR,
		BaselineGCR:  m.BaselineGCR,
	}
	return out, nil
}

func (i *Interactor) Board(ctx context.Context) ([]dto.BoardEntry, error) {
	rows, err := i.history.Board(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BoardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.BoardEntry{GroupID: row.Group.ID, GroupName: row.Group.Name, Heat: toSummary(row.Momentum)})
	}
	return out, nil
}

func toSummary(m domain.GroupMomentum) dto.Summary {
	return dto.Summary{
		Score:        m.Score,
		Tier:         int(m.Tier),
		TierName:     domain.TierName(m.Tier),
		StreakDays:   m.StreakDays,
		PeakScore:    m.PeakScore,
		PeakDate:     formatOptionalDate(m.PeakDate),
		YesterdayGCR: m.YesterdayGCR,
		BaselineGCR:  m.BaselineGCR,
	}
}

func formatOptionalDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := clock.FormatDate(*d)
	return &s
}
