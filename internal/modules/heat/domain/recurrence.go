package domain

import "math"

const (
	Sensitivity = 50.0
	DecayFactor = 0.98
	MinScore    = 0.0
	MaxScore    = 100.0

	// BaselineWindowDays is how many days before the processed date feed the baseline.
	BaselineWindowDays = 7
)

// NextScore applies one day of momentum: the GCR delta is scaled onto the
// previous score, decay is applied unconditionally, and the result is clamped.
func NextScore(prev, delta float64) float64 {
	raw := prev + delta*Sensitivity
	return clampScore(raw * DecayFactor)
}

// Baseline is the mean of the trailing window, or the current GCR when the
// window holds no records so a group without history sees no delta.
func Baseline(window []float64, current float64) float64 {
	if len(window) == 0 {
		return current
	}
	sum := 0.0
	for _, gcr := range window {
		sum += gcr
	}
	return sum / float64(len(window))
}

func GCR(completed, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return float64(completed) / float64(possible)
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
