package domain

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNextScoreScenario(t *testing.T) {
	t.Parallel()
	got := NextScore(30, 1)
	if !approx(got, 78.4) {
		t.Fatalf("expected 78.4, got %v", got)
	}
	if ScoreToTier(got) != TierInferno {
		t.Fatalf("expected inferno, got %v", ScoreToTier(got))
	}
}

func TestNextScoreDecaysAndClamps(t *testing.T) {
	t.Parallel()
	if got := NextScore(50, 0); !approx(got, 49) {
		t.Fatalf("expected pure decay to 49, got %v", got)
	}
	if got := NextScore(90, 1); got != MaxScore {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
	if got := NextScore(10, -1); got != MinScore {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := NextScore(math.NaN(), 0); got != MinScore {
		t.Fatalf("expected NaN to clamp to 0, got %v", got)
	}
}

func TestBaseline(t *testing.T) {
	t.Parallel()
	if got := Baseline(nil, 0.6); got != 0.6 {
		t.Fatalf("expected empty window to fall back to current, got %v", got)
	}
	if got := Baseline([]float64{0.2, 0.4, 0.6}, 1); !approx(got, 0.4) {
		t.Fatalf("expected mean 0.4, got %v", got)
	}
}

func TestGCR(t *testing.T) {
	t.Parallel()
	if GCR(0, 0) != 0 {
		t.Fatalf("expected zero when nothing is possible")
	}
	if GCR(3, 4) != 0.75 {
		t.Fatalf("expected 0.75")
	}
}
