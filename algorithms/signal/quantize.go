package signal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFullScale is returned for a non-positive full-scale value.
var ErrInvalidFullScale = errors.New("signal: full scale must be positive")

// Quantize converts a normalised signal ([-1, 1]) to fixed-point integers by
// scaling with fullScale and truncating toward zero. Values beyond full scale
// saturate at ±fullScale.
func Quantize(s *Signal, fullScale int) ([]int, error) {
	if fullScale <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFullScale, fullScale)
	}

	fs := float64(fullScale)
	out := make([]int, s.Len())
	for i, v := range s.samples {
		q := math.Trunc(v * fs)
		if q > fs {
			q = fs
		} else if q < -fs {
			q = -fs
		}
		out[i] = int(q)
	}

	return out, nil
}

// FromFixedPoint builds a Signal from fixed-point samples. When fullScale is
// positive the values are divided by it, otherwise they are kept as-is.
// Values need not be integral; pipeline output is often written as floats.
func FromFixedPoint(values []float64, fullScale int, sampleRate float64) (*Signal, error) {
	scale := 1.0
	if fullScale > 0 {
		scale = 1 / float64(fullScale)
	}

	samples := make([]float64, len(values))
	for i, v := range values {
		samples[i] = v * scale
	}

	return FromOwned(samples, sampleRate)
}
