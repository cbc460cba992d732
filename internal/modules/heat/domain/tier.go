package domain

import "math"

const (
	TierCold Tier = iota
	TierSpark
	TierEmber
	TierFlicker
	TierSteady
	TierBlaze
	TierInferno
	TierSupernova
)

type Tier int

type tierBand struct {
	tier  Tier
	name  string
	upper float64
}

// tierBands is ordered by upper bound; a score belongs to the first band whose
// inclusive upper bound it does not exceed.
var tierBands = [...]tierBand{
	{TierCold, "Cold", 5},
	{TierSpark, "Spark", 18},
	{TierEmber, "Ember", 32},
	{TierFlicker, "Flicker", 46},
	{TierSteady, "Steady", 60},
	{TierBlaze, "Blaze", 74},
	{TierInferno, "Inferno", 88},
	{TierSupernova, "Supernova", MaxScore},
}

const TopTier = TierSupernova

func ScoreToTier(score float64) Tier {
	if math.IsNaN(score) {
		return TierCold
	}
	for _, band := range tierBands {
		if score <= band.upper {
			return band.tier
		}
	}
	return TopTier
}

// TierName falls back to "Cold" for tiers outside the table.
func TierName(t Tier) string {
	if t < TierCold || t > TopTier {
		return tierBands[TierCold].name
	}
	return tierBands[t].name
}

func (t Tier) String() string {
	return TierName(t)
}
