package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics and decibel helpers shared by the spectral and transfer packages,
// backed by gonum where it has an implementation.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// MinMax returns the smallest and largest values of a non-empty slice.
func MinMax(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 0
	}
	return floats.Min(data), floats.Max(data)
}

// ArgMax returns the index of the largest value, or -1 for an empty slice.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Sum returns the sum of the slice.
func Sum(data []float64) float64 {
	return floats.Sum(data)
}

// DefaultFloor is the smallest linear amplitude converted to decibels.
const DefaultFloor = 1e-12

// AmplitudeToDB converts a linear amplitude to 20*log10(x). Values below the
// (positive) floor, NaN and +Inf are replaced by floor so the result is finite.
func AmplitudeToDB(x, floor float64) float64 {
	if !(x >= floor) || math.IsInf(x, 1) {
		x = floor
	}
	return 20 * math.Log10(x)
}

// Clamp limits value to [min, max]. NaN clamps to min.
func Clamp(value, min, max float64) float64 {
	if !(value >= min) {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NearestInteger rounds x and reports the relative deviation |x-n|/n.
func NearestInteger(x float64) (n int, deviation float64) {
	r := math.Round(x)
	if r == 0 {
		return 0, math.Inf(1)
	}
	return int(r), math.Abs(x-r) / math.Abs(r)
}

// RelativeDifference returns |a-b|/|b|, or +Inf when b is zero and a is not.
func RelativeDifference(a, b float64) float64 {
	if b == 0 {
		if a == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Abs(b)
}
