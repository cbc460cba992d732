package domain

import (
	"math"
	"testing"
)

func TestScoreToTierBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		score float64
		want  Tier
	}{
		{0, TierCold},
		{5, TierCold},
		{5.01, TierSpark},
		{6, TierSpark},
		{18, TierSpark},
		{18.01, TierEmber},
		{32, TierEmber},
		{32.01, TierFlicker},
		{46, TierFlicker},
		{46.01, TierSteady},
		{60, TierSteady},
		{60.01, TierBlaze},
		{74, TierBlaze},
		{74.01, TierInferno},
		{78.4, TierInferno},
		{88, TierInferno},
		{88.01, TierSupernova},
		{89, TierSupernova},
		{100, TierSupernova},
	}
	for _, tc := range cases {
		if got := ScoreToTier(tc.score); got != tc.want {
			t.Fatalf("ScoreToTier(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestScoreToTierIsTotalAndMonotonic(t *testing.T) {
	t.Parallel()
	prev := ScoreToTier(0)
	for i := 0; i <= 10000; i++ {
		score := float64(i) / 100
		tier := ScoreToTier(score)
		if tier < TierCold || tier > TopTier {
			t.Fatalf("tier %d out of range for score %.2f", tier, score)
		}
		if tier < prev {
			t.Fatalf("tier decreased from %d to %d at score %.2f", prev, tier, score)
		}
		prev = tier
	}
	if ScoreToTier(math.NaN()) != TierCold {
		t.Fatalf("expected NaN to classify as cold")
	}
}

func TestTierName(t *testing.T) {
	t.Parallel()
	want := []string{"Cold", "Spark", "Ember", "Flicker", "Steady", "Blaze", "Inferno", "Supernova"}
	for i, name := range want {
		if got := TierName(Tier(i)); got != name {
			t.Fatalf("TierName(%d) = %q, want %q", i, got, name)
		}
	}
	for _, tier := range []Tier{-1, 8, 100} {
		if got := TierName(tier); got != "Cold" {
			t.Fatalf("TierName(%d) = %q, want Cold", tier, got)
		}
	}
}
