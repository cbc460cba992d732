package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/logging"
	"pursue/internal/platform/metrics"
)

// MilestoneDispatcher fans milestone events out as push-only notifications.
// Nothing is persisted and delivery errors never propagate.
type MilestoneDispatcher struct {
	roster  heatout.RosterReader
	push    heatout.PushSender
	metrics *metrics.Heat
	logger  *zap.Logger
}

func NewMilestoneDispatcher(roster heatout.RosterReader, push heatout.PushSender, m *metrics.Heat, logger *zap.Logger) *MilestoneDispatcher {
	if m == nil {
		m = metrics.NewNopHeat()
	}
	return &MilestoneDispatcher{roster: roster, push: push, metrics: m, logger: logging.OrNop(logger)}
}

type DispatchReport struct {
	Sent   int
	Failed int
}

func (d *MilestoneDispatcher) Dispatch(ctx context.Context, group domain.GroupRef, milestones []domain.Milestone) DispatchReport {
	report := DispatchReport{}
	if len(milestones) == 0 || d.push == nil {
		return report
	}
	for _, m := range milestones {
		d.metrics.MilestonesTotal.WithLabelValues(string(m.Kind)).Inc()
	}

	members, err := d.roster.ActiveMembers(ctx, group.ID)
	if err != nil {
		d.logger.Warn("milestone fan-out skipped: load members failed",
			zap.String("group_id", group.ID),
			zap.Error(err),
		)
		report.Failed = len(milestones)
		return report
	}

	for _, milestone := range milestones {
		for _, userID := range members {
			err := d.push.SendPush(ctx, heatout.PushMessage{
				UserID:  userID,
				GroupID: group.ID,
				Type:    string(milestone.Kind),
				Title:   group.Name,
				Body:    milestone.Body,
				Data: map[string]string{
					"tier":        strconv.Itoa(int(milestone.Tier)),
					"tier_name":   milestone.TierName,
					"streak_days": strconv.Itoa(milestone.StreakDays),
				},
			})
			if err != nil {
				report.Failed++
				d.metrics.PushTotal.WithLabelValues("failed").Inc()
				d.logger.Warn("milestone push failed",
					zap.String("group_id", group.ID),
					zap.String("user_id", userID),
					zap.String("milestone", string(milestone.Kind)),
					zap.Error(err),
				)
				continue
			}
			report.Sent++
			d.metrics.PushTotal.WithLabelValues("sent").Inc()
		}
	}
	return report
}
