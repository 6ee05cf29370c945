package transfer

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
)

// Lag is the delay of the observed signal relative to the reference, both
// taken at the observed rate.
type Lag struct {
	Samples     int     `json:"samples"` // positive when observed trails reference
	Seconds     float64 `json:"seconds"`
	Correlation float64 `json:"correlation"` // normalized peak, in [-1, 1]
}

// EstimateLag cross-correlates the observed signal with the reference taken
// every decimation-th sample and returns the lag of the strongest peak.
// maxLag bounds the search in observed samples; zero searches every lag.
func EstimateLag(reference, observed *signal.Signal, decimation, maxLag int) (*Lag, error) {
	if reference == nil || reference.IsEmpty() || observed == nil || observed.IsEmpty() {
		return nil, fmt.Errorf("%w: cannot correlate an empty signal", ErrLengthMismatch)
	}
	if decimation < 1 {
		return nil, fmt.Errorf("%w: decimation %d", ErrUnsupportedRateRatio, decimation)
	}

	ref := make([]float64, 0, reference.Len()/decimation+1)
	for i := 0; i < reference.Len(); i += decimation {
		ref = append(ref, reference.At(i))
	}
	obs := observed.Samples()

	n1, n2 := len(obs), len(ref)
	size := nextPowerOf2(n1 + n2 - 1)

	padded1 := make([]float64, size)
	padded2 := make([]float64, size)
	copy(padded1, obs)
	copy(padded2, ref)

	fft1 := fft.FFTReal(padded1)
	fft2 := fft.FFTReal(padded2)

	crossPower := make([]complex128, size)
	for i := range size {
		crossPower[i] = fft1[i] * cmplx.Conj(fft2[i])
	}
	correlation := fft.IFFT(crossPower)

	hi, lo := n1-1, -(n2 - 1)
	if maxLag > 0 {
		hi = min(hi, maxLag)
		lo = max(lo, -maxLag)
	}

	bestLag, best := 0, math.Inf(-1)
	for lag := lo; lag <= hi; lag++ {
		idx := lag
		if lag < 0 {
			idx = size + lag
		}
		if v := real(correlation[idx]); math.Abs(v) > best {
			best = math.Abs(v)
			bestLag = lag
		}
	}

	idx := bestLag
	if bestLag < 0 {
		idx = size + bestLag
	}
	peak := real(correlation[idx])

	norm := math.Sqrt(floats.Dot(obs, obs) * floats.Dot(ref, ref))
	result := &Lag{
		Samples: bestLag,
		Seconds: float64(bestLag) / observed.SampleRate(),
	}
	if norm > 0 {
		result.Correlation = common.Clamp(peak/norm, -1, 1)
	}
	return result, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
