package spectral

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
)

// Flatness computes the spectral flatness (Wiener entropy) of a magnitude
// spectrum: the geometric mean over the arithmetic mean, in [0, 1].
// Magnitudes below floor count as floor so empty bins pull the result
// towards zero. A spectrum with no energy has flatness 0.
func Flatness(magnitudes []float64, floor float64) float64 {
	if len(magnitudes) == 0 {
		return 0
	}
	if !(floor > 0) {
		floor = common.DefaultFloor
	}

	clamped := make([]float64, len(magnitudes))
	for i, m := range magnitudes {
		clamped[i] = math.Max(m, floor)
	}

	arithmetic := stat.Mean(clamped, nil)
	if arithmetic <= floor {
		return 0
	}

	flatness := stat.GeometricMean(clamped, nil) / arithmetic
	if flatness > 1 {
		flatness = 1
	}
	return flatness
}

// WeakBins counts magnitudes more than belowPeakDB under the largest one.
func WeakBins(magnitudes []float64, belowPeakDB float64) int {
	if len(magnitudes) == 0 {
		return 0
	}

	_, peak := common.MinMax(magnitudes)
	if peak <= 0 {
		return len(magnitudes)
	}
	threshold := peak * math.Pow(10, -belowPeakDB/20)

	weak := 0
	for _, m := range magnitudes {
		if m < threshold {
			weak++
		}
	}
	return weak
}
