package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Heat groups the collectors emitted by the momentum batch and its push fan-out.
type Heat struct {
	GroupsTotal     *prometheus.CounterVec
	GroupDuration   prometheus.Histogram
	BatchLastRun    prometheus.Gauge
	MilestonesTotal *prometheus.CounterVec
	PushTotal       *prometheus.CounterVec
	HistoryRequests *prometheus.CounterVec
}

func NewHeat(reg prometheus.Registerer) *Heat {
	factory := promauto.With(reg)
	return &Heat{
		GroupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pursue_heat_groups_total",
			Help: "Groups handled by the heat batch by outcome",
		}, []string{"outcome"}),
		GroupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pursue_heat_group_duration_seconds",
			Help:    "Per-group heat pipeline duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		BatchLastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pursue_heat_batch_last_run_timestamp_seconds",
			Help: "Unix time the last heat batch finished",
		}),
		MilestonesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pursue_heat_milestones_total",
			Help: "Milestones detected by kind",
		}, []string{"kind"}),
		PushTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pursue_push_deliveries_total",
			Help: "Push deliveries by result",
		}, []string{"result"}),
		HistoryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pursue_heat_history_requests_total",
			Help: "History reads by entitlement",
		}, []string{"entitled"}),
	}
}

// NewNopHeat registers against a throwaway registry so callers never nil-check.
func NewNopHeat() *Heat {
	return NewHeat(prometheus.NewRegistry())
}
