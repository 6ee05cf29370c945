package windowing

import (
	"fmt"
	"math"
)

// Kaiser is a Kaiser window. Larger beta trades main-lobe width for lower
// side lobes; beta = 0 is rectangular.
type Kaiser struct {
	size         int
	beta         float64
	symmetric    bool
	coefficients []float64
}

// NewKaiser creates a Kaiser window. A symmetric window spans N-1 intervals
// (filter design), a periodic one N (spectral analysis).
func NewKaiser(size int, beta float64, symmetric bool) (*Kaiser, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidWindow, size)
	}
	if beta < 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, fmt.Errorf("%w: kaiser beta %g", ErrInvalidWindow, beta)
	}

	k := &Kaiser{
		size:      size,
		beta:      beta,
		symmetric: symmetric,
	}
	k.generate()
	return k, nil
}

func (k *Kaiser) generate() {
	k.coefficients = make([]float64, k.size)
	if k.size == 1 {
		k.coefficients[0] = 1
		return
	}

	denominator := float64(k.size)
	if k.symmetric {
		denominator = float64(k.size - 1)
	}

	i0Beta := besselI0(k.beta)

	for i := range k.size {
		arg := 2.0*float64(i)/denominator - 1.0
		r := 1 - arg*arg // rounding can leave this slightly negative at the edges
		if r < 0 {
			r = 0
		}
		k.coefficients[i] = besselI0(k.beta*math.Sqrt(r)) / i0Beta
	}
}

// besselI0 is the zero-order modified Bessel function of the first kind,
// evaluated by its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for i := 1; i < 300; i++ {
		half := x / (2.0 * float64(i))
		term *= half * half
		sum += term

		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

// ApplyInPlace multiplies signal by the window.
func (k *Kaiser) ApplyInPlace(signal []float64) error {
	return applyCoefficients(signal, k.coefficients)
}

// Coefficients returns a copy of the window coefficients.
func (k *Kaiser) Coefficients() []float64 {
	return cloneCoefficients(k.coefficients)
}

// Size returns the window length.
func (k *Kaiser) Size() int { return k.size }

// Type returns ShapeKaiser.
func (k *Kaiser) Type() Shape { return ShapeKaiser }

// Sum returns the sum of the coefficients (coherent gain times N).
func (k *Kaiser) Sum() float64 { return sumCoefficients(k.coefficients) }

// Beta returns the Kaiser beta parameter.
func (k *Kaiser) Beta() float64 { return k.beta }
