package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	"pursue/internal/platform/clock"
	"pursue/internal/platform/id"
	"pursue/internal/platform/logging"
	"pursue/internal/platform/metrics"
	"pursue/internal/platform/tx"
)

const tracerName = "pursue/heat"

type OrchestratorConfig struct {
	Concurrency int
	Location    *time.Location
}

// Orchestrator drives the per-group pipeline (aggregate, update, detect,
// dispatch) over every candidate group with isolated failure handling.
type Orchestrator struct {
	roster     heatout.RosterReader
	gcr        *GCRCalculator
	updater    *MomentumUpdater
	dispatcher *MilestoneDispatcher
	locks      *tx.KeyedLocker
	clock      clock.Clock
	ids        id.Generator
	metrics    *metrics.Heat
	logger     *zap.Logger
	cfg        OrchestratorConfig
}

func NewOrchestrator(
	roster heatout.RosterReader,
	gcr *GCRCalculator,
	updater *MomentumUpdater,
	dispatcher *MilestoneDispatcher,
	locks *tx.KeyedLocker,
	clk clock.Clock,
	ids id.Generator,
	m *metrics.Heat,
	logger *zap.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if locks == nil {
		locks = tx.NewKeyedLocker()
	}
	if m == nil {
		m = metrics.NewNopHeat()
	}
	return &Orchestrator{
		roster:     roster,
		gcr:        gcr,
		updater:    updater,
		dispatcher: dispatcher,
		locks:      locks,
		clock:      clk,
		ids:        ids,
		metrics:    m,
		logger:     logging.OrNop(logger),
		cfg:        cfg,
	}
}

type GroupFailure struct {
	GroupID string
	Err     error
}

type BatchResult struct {
	RunID     string
	Date      time.Time
	Processed int
	Skipped   int
	Errors    int
	Failures  []GroupFailure
}

type GroupOutcome struct {
	Group      domain.GroupRef
	Completion domain.DailyCompletion
	Update     UpdateResult
	Milestones []domain.Milestone
	Dispatch   DispatchReport
}

// ResolveDate returns date, or yesterday in the reference zone when date is nil.
func (o *Orchestrator) ResolveDate(date *time.Time) time.Time {
	if date != nil {
		return clock.DateOf(*date, time.UTC)
	}
	return clock.Yesterday(o.clock.Now(), o.cfg.Location)
}

// RunBatch only fails when candidate selection fails; per-group faults are
// counted in the result.
func (o *Orchestrator) RunBatch(ctx context.Context, date *time.Time) (BatchResult, error) {
	day := o.ResolveDate(date)
	result := BatchResult{RunID: o.ids.New(), Date: day}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "heat.batch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("heat.run_id", result.RunID), attribute.String("heat.date", clock.FormatDate(day))),
	)
	defer span.End()

	groups, err := o.roster.CandidateGroups(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select candidates")
		return BatchResult{}, fmt.Errorf("select candidate groups: %w", err)
	}
	logger := o.logger.With(zap.String("run_id", result.RunID), zap.String("date", clock.FormatDate(day)))
	logger.Info("heat batch started", zap.Int("candidates", len(groups)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			outcome, err := o.ProcessGroup(gctx, group, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors++
				result.Failures = append(result.Failures, GroupFailure{GroupID: group.ID, Err: err})
				o.metrics.GroupsTotal.WithLabelValues("error").Inc()
				logger.Error("heat pipeline failed", zap.String("group_id", group.ID), zap.Error(err))
				return nil
			}
			result.Processed++
			if outcome.Update.Skipped {
				result.Skipped++
				o.metrics.GroupsTotal.WithLabelValues("skipped").Inc()
			} else {
				o.metrics.GroupsTotal.WithLabelValues("processed").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	o.metrics.BatchLastRun.Set(float64(o.clock.Now().Unix()))
	span.SetAttributes(
		attribute.Int("heat.processed", result.Processed),
		attribute.Int("heat.errors", result.Errors),
	)
	logger.Info("heat batch finished",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

// ProcessGroup runs one group's pipeline under its lock. Panics are turned
// into errors so one bad group cannot take the batch down.
func (o *Orchestrator) ProcessGroup(ctx context.Context, group domain.GroupRef, date time.Time) (outcome GroupOutcome, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "heat.group", trace.WithAttributes(attribute.String("heat.group_id", group.ID)))
	defer span.End()
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in heat pipeline: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "group pipeline")
		}
		o.metrics.GroupDuration.Observe(time.Since(started).Seconds())
	}()

	outcome.Group = group
	err = o.locks.WithinKey(ctx, group.ID, func(ctx context.Context) error {
		completion, err := o.gcr.ComputeAndStoreGCR(ctx, group.ID, date)
		if err != nil {
			return fmt.Errorf("compute gcr: %w", err)
		}
		outcome.Completion = completion

		update, err := o.updater.CalculateGroupHeat(ctx, group.ID, date)
		if err != nil {
			return fmt.Errorf("calculate heat: %w", err)
		}
		outcome.Update = update
		if update.Skipped {
			return nil
		}
		outcome.Milestones = domain.DetectMilestones(update.Before, update.After)
		return nil
	})
	if err != nil {
		return outcome, err
	}
	// The score is already committed; delivery happens outside the lock and
	// its failures only show up in the report.
	if o.dispatcher != nil && len(outcome.Milestones) > 0 {
		outcome.Dispatch = o.dispatcher.Dispatch(ctx, group, outcome.Milestones)
	}
	return outcome, nil
}

// CalculateGroup runs the pipeline for a single group outside a batch.
func (o *Orchestrator) CalculateGroup(ctx context.Context, groupID string, date *time.Time) (GroupOutcome, time.Time, error) {
	day := o.ResolveDate(date)
	group, err := o.roster.Group(ctx, groupID)
	if err != nil {
		return GroupOutcome{}, day, err
	}
	outcome, err := o.ProcessGroup(ctx, group, day)
	return outcome, day, err
}
