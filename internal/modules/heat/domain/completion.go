package domain

type MetricType string

const (
	MetricBinary   MetricType = "binary"
	MetricNumeric  MetricType = "numeric"
	MetricDuration MetricType = "duration"
)

// IsCompleted decides whether one logged value satisfies a goal. Unknown
// metric types and numeric goals without a target never complete.
func IsCompleted(value float64, metric MetricType, target *float64) bool {
	switch metric {
	case MetricBinary:
		return value == 1
	case MetricNumeric, MetricDuration:
		return target != nil && value >= *target
	default:
		return false
	}
}
