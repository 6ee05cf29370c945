// Package signal holds the immutable sampled-signal value shared by the
// stimulus, spectral and transfer packages.
package signal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSampleRate is returned when a signal is built with a
// non-positive or non-finite sample rate.
var ErrInvalidSampleRate = errors.New("signal: sample rate must be positive")

// Signal is an ordered sequence of real samples at a fixed sample rate.
// A Signal never changes after construction; accessors hand out copies.
type Signal struct {
	samples    []float64
	sampleRate float64
}

// New copies samples into a new Signal.
func New(samples []float64, sampleRate float64) (*Signal, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	data := make([]float64, len(samples))
	copy(data, samples)

	return &Signal{samples: data, sampleRate: sampleRate}, nil
}

// wrap adopts samples without copying. Callers must not keep a reference.
func wrap(samples []float64, sampleRate float64) *Signal {
	return &Signal{samples: samples, sampleRate: sampleRate}
}

// FromOwned builds a Signal that takes ownership of samples. It exists for
// generators that allocate a fresh slice and hand it over; the caller must
// not touch samples afterwards.
func FromOwned(samples []float64, sampleRate float64) (*Signal, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}
	return wrap(samples, sampleRate), nil
}

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.samples) }

// SampleRate returns the sample rate in Hz.
func (s *Signal) SampleRate() float64 { return s.sampleRate }

// Duration returns Len()/SampleRate() in seconds.
func (s *Signal) Duration() float64 {
	return float64(len(s.samples)) / s.sampleRate
}

// At returns sample i.
func (s *Signal) At(i int) float64 { return s.samples[i] }

// Samples returns a copy of the sample data.
func (s *Signal) Samples() []float64 {
	out := make([]float64, len(s.samples))
	copy(out, s.samples)
	return out
}

// CopyTo copies samples[offset:offset+len(dst)] into dst and returns the
// number of samples copied. It lets frame-based consumers avoid a full copy.
func (s *Signal) CopyTo(dst []float64, offset int) int {
	if offset < 0 || offset >= len(s.samples) {
		return 0
	}
	return copy(dst, s.samples[offset:])
}

// IsEmpty reports whether the signal has no samples.
func (s *Signal) IsEmpty() bool { return len(s.samples) == 0 }

// TimeAxis returns i/SampleRate for every sample.
func (s *Signal) TimeAxis() []float64 {
	t := make([]float64, len(s.samples))
	for i := range t {
		t[i] = float64(i) / s.sampleRate
	}
	return t
}

// WithSampleRate returns a Signal sharing these samples but labelled with a
// different rate. Sample values are not resampled.
func (s *Signal) WithSampleRate(sampleRate float64) (*Signal, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}
	// samples are never mutated, so sharing the backing array is safe
	return wrap(s.samples, sampleRate), nil
}

// Peak returns the largest absolute sample value.
func (s *Signal) Peak() float64 {
	peak := 0.0
	for _, v := range s.samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
