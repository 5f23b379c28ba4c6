package common

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Correlation calculates Pearson correlation coefficient between two series.
// Constant series have no defined correlation and yield 0.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}
	if floats.Max(x) == floats.Min(x) || floats.Max(y) == floats.Min(y) {
		return 0.0
	}
	return stat.Correlation(x, y, nil)
}

// Share returns part/total, or 0 when total is empty
func Share(part, total float64) float64 {
	if total <= 0 {
		return 0.0
	}
	return part / total
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
