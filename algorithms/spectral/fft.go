// Package spectral implements the forward and inverse Fourier transforms and
// the short-time spectrogram built on them.
package spectral

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// ErrEmptySignal is returned when there is nothing to transform.
var ErrEmptySignal = errors.New("spectral: empty signal")

// Transform computes discrete Fourier transforms of arbitrary length.
// It holds no per-call state and is safe for concurrent use.
type Transform struct {
	logger logging.Logger
}

// NewTransform creates a new transform.
func NewTransform() *Transform {
	return &Transform{
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_transform",
		}),
	}
}

// Forward computes the full DFT, N coefficients on the axis k*rate/N.
// mjibson/go-dsp handles all sizes, including non-power-of-2.
func (t *Transform) Forward(sig *signal.Signal) (*Spectrum, error) {
	if sig == nil || sig.IsEmpty() {
		return nil, ErrEmptySignal
	}

	n := sig.Len()
	coeffs := fft.FFTReal(sig.Samples())

	t.logger.Debug("Computed full transform", logging.Fields{
		"samples":     n,
		"sample_rate": sig.SampleRate(),
	})

	return newSpectrum(coeffs, n, sig.SampleRate(), false), nil
}

// ForwardHalf computes the non-negative half of the DFT, N/2+1 coefficients.
func (t *Transform) ForwardHalf(sig *signal.Signal) (*Spectrum, error) {
	if sig == nil || sig.IsEmpty() {
		return nil, ErrEmptySignal
	}

	n := sig.Len()
	plan := fourier.NewFFT(n)
	coeffs := plan.Coefficients(nil, sig.Samples())

	t.logger.Debug("Computed half transform", logging.Fields{
		"samples": n,
		"bins":    len(coeffs),
	})

	return newSpectrum(coeffs, n, sig.SampleRate(), true), nil
}

// Inverse reconstructs the real signal from a full or half spectrum.
// Imaginary residue from rounding is discarded.
func (t *Transform) Inverse(spec *Spectrum) (*signal.Signal, error) {
	if spec == nil || spec.sourceLen == 0 {
		return nil, ErrEmptySignal
	}

	full := spec.coefficients
	if spec.half {
		expanded, err := hermitianExpand(spec.coefficients, spec.sourceLen)
		if err != nil {
			return nil, err
		}
		full = expanded
	} else if len(full) != spec.sourceLen {
		return nil, fmt.Errorf("spectral: full spectrum has %d coefficients for length %d", len(full), spec.sourceLen)
	}

	inv := fft.IFFT(full)
	out := make([]float64, len(inv))
	for i, v := range inv {
		out[i] = real(v)
	}

	return signal.FromOwned(out, spec.sampleRate)
}

// hermitianExpand rebuilds all n bins of a real signal's DFT from its
// non-negative half using X[n-k] = conj(X[k]).
func hermitianExpand(half []complex128, n int) ([]complex128, error) {
	if len(half) != n/2+1 {
		return nil, fmt.Errorf("spectral: half spectrum has %d coefficients for length %d", len(half), n)
	}

	full := make([]complex128, n)
	copy(full, half)
	for k := n/2 + 1; k < n; k++ {
		full[k] = cmplx.Conj(half[n-k])
	}
	return full, nil
}
