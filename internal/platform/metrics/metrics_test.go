package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewHeatRegistersCollectors(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := NewHeat(reg)
	m.GroupsTotal.WithLabelValues("processed").Inc()
	m.MilestonesTotal.WithLabelValues("heat_tier_up").Add(2)

	if got := testutil.ToFloat64(m.GroupsTotal.WithLabelValues("processed")); got != 1 {
		t.Fatalf("expected 1 processed group, got %v", got)
	}
	if got := testutil.ToFloat64(m.MilestonesTotal.WithLabelValues("heat_tier_up")); got != 2 {
		t.Fatalf("expected 2 tier-up milestones, got %v", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) < 2 {
		t.Fatalf("expected gathered families, got %d", len(families))
	}
}
