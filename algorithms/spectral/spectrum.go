package spectral

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Spectrum is the discrete Fourier transform of a signal together with its
// frequency axis. A full spectrum has N coefficients (k = 0..N-1); a half
// spectrum keeps the non-negative bins k = 0..N/2.
type Spectrum struct {
	coefficients []complex128
	frequencies  []float64
	sourceLen    int
	sampleRate   float64
	half         bool
}

func newSpectrum(coeffs []complex128, sourceLen int, sampleRate float64, half bool) *Spectrum {
	freqs := make([]float64, len(coeffs))
	for k := range freqs {
		freqs[k] = BinFrequency(k, sourceLen, sampleRate)
	}
	return &Spectrum{
		coefficients: coeffs,
		frequencies:  freqs,
		sourceLen:    sourceLen,
		sampleRate:   sampleRate,
		half:         half,
	}
}

// BinFrequency returns k*sampleRate/n.
func BinFrequency(k, n int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(n)
}

// Len returns the number of coefficients held.
func (s *Spectrum) Len() int { return len(s.coefficients) }

// SourceLength returns N, the length of the transformed signal.
func (s *Spectrum) SourceLength() int { return s.sourceLen }

// SampleRate returns the sample rate of the transformed signal.
func (s *Spectrum) SampleRate() float64 { return s.sampleRate }

// IsHalf reports whether only the non-negative bins are held.
func (s *Spectrum) IsHalf() bool { return s.half }

// Resolution returns the bin spacing in Hz.
func (s *Spectrum) Resolution() float64 { return s.sampleRate / float64(s.sourceLen) }

// At returns coefficient k.
func (s *Spectrum) At(k int) complex128 { return s.coefficients[k] }

// Coefficients returns a copy of the coefficients.
func (s *Spectrum) Coefficients() []complex128 {
	out := make([]complex128, len(s.coefficients))
	copy(out, s.coefficients)
	return out
}

// Frequencies returns a copy of the frequency axis.
func (s *Spectrum) Frequencies() []float64 {
	out := make([]float64, len(s.frequencies))
	copy(out, s.frequencies)
	return out
}

// Magnitudes returns |X[k]| for every held bin.
func (s *Spectrum) Magnitudes() []float64 {
	n := len(s.coefficients)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i, c := range s.coefficients {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Magnitude(out, re, im)
	return out
}
