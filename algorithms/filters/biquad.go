// Package filters holds the reference pipeline used to exercise the
// analyzer: RBJ biquad sections and an anti-aliased integer decimator.
package filters

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFilter is returned for filter parameters outside (0, Nyquist).
var ErrInvalidFilter = errors.New("filters: invalid filter parameters")

// Kind selects the biquad response.
type Kind int

const (
	// Lowpass passes frequencies below the corner frequency.
	Lowpass Kind = iota
	// Bandpass passes a band around the center frequency (0 dB peak).
	Bandpass
)

func (k Kind) String() string {
	switch k {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Biquad is a second-order IIR section.
//
// Coefficients follow Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type Biquad struct {
	kind       Kind
	sampleRate float64
	freq       float64 // corner or center frequency in Hz
	q          float64

	// normalized by a0
	b0, b1, b2 float64
	a1, a2     float64

	// direct form II delay line
	w1, w2 float64
}

// NewLowpass creates a lowpass section. q = 1/sqrt(2) gives a Butterworth
// response; the gain at cutoff equals q.
func NewLowpass(sampleRate, cutoff, q float64) (*Biquad, error) {
	return newBiquad(Lowpass, sampleRate, cutoff, q)
}

// NewBandpass creates a constant 0 dB peak bandpass section.
func NewBandpass(sampleRate, center, q float64) (*Biquad, error) {
	return newBiquad(Bandpass, sampleRate, center, q)
}

func newBiquad(kind Kind, sampleRate, freq, q float64) (*Biquad, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidFilter, sampleRate)
	}
	if !(freq > 0) || freq >= sampleRate/2 {
		return nil, fmt.Errorf("%w: %s frequency %g Hz outside (0, %g)", ErrInvalidFilter, kind, freq, sampleRate/2)
	}
	if !(q > 0) {
		return nil, fmt.Errorf("%w: q %g", ErrInvalidFilter, q)
	}

	bq := &Biquad{kind: kind, sampleRate: sampleRate, freq: freq, q: q}
	bq.computeCoefficients()
	return bq, nil
}

func (bq *Biquad) computeCoefficients() {
	w0 := 2 * math.Pi * bq.freq / bq.sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * bq.q)

	var b0, b1, b2 float64
	switch bq.kind {
	case Bandpass:
		b0, b1, b2 = alpha, 0, -alpha
	default:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = b0
	}
	a0 := 1 + alpha

	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = -2 * cosW0 / a0
	bq.a2 = (1 - alpha) / a0
}

// Process filters one sample.
//
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
func (bq *Biquad) Process(x float64) float64 {
	w := x - bq.a1*bq.w1 - bq.a2*bq.w2
	y := bq.b0*w + bq.b1*bq.w1 + bq.b2*bq.w2
	bq.w2 = bq.w1
	bq.w1 = w
	return y
}

// ProcessInPlace filters a buffer, overwriting it.
func (bq *Biquad) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = bq.Process(x)
	}
}

// Reset clears the delay line.
func (bq *Biquad) Reset() {
	bq.w1, bq.w2 = 0, 0
}

// Response returns the linear gain and phase (radians) at frequency.
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (bq *Biquad) Response(frequency float64) (magnitude, phase float64) {
	w := 2 * math.Pi * frequency / bq.sampleRate
	z1 := complex(math.Cos(w), -math.Sin(w))
	z2 := z1 * z1

	num := complex(bq.b0, 0) + complex(bq.b1, 0)*z1 + complex(bq.b2, 0)*z2
	den := 1 + complex(bq.a1, 0)*z1 + complex(bq.a2, 0)*z2
	h := num / den

	return math.Hypot(real(h), imag(h)), math.Atan2(imag(h), real(h))
}

// Kind returns the section type.
func (bq *Biquad) Kind() Kind { return bq.kind }

// Frequency returns the corner or center frequency in Hz.
func (bq *Biquad) Frequency() float64 { return bq.freq }

// Q returns the quality factor.
func (bq *Biquad) Q() float64 { return bq.q }
