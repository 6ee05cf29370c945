// Package stimulus generates deterministic reference signals (linear chirps
// and pure tones) used to excite a pipeline under test.
package stimulus

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// ErrInvalidParameter is returned for a malformed generation request.
var ErrInvalidParameter = errors.New("stimulus: invalid parameter")

// MaxSamples bounds the length of a generated signal.
const MaxSamples = math.MaxInt32

// Chirp describes a linear frequency sweep.
//
// The instantaneous frequency rises (or falls) linearly:
//
//	f(t) = StartFreq + (EndFreq-StartFreq) * t / Duration
//
// Amplitude defaults to 1. When FullScale is positive the waveform is scaled
// by it and truncated toward zero, the form used when the stimulus is written
// out as fixed-point integers.
type Chirp struct {
	StartFreq  float64 `json:"start_freq"`  // Hz
	EndFreq    float64 `json:"end_freq"`    // Hz
	Duration   float64 `json:"duration"`    // seconds
	SampleRate float64 `json:"sample_rate"` // Hz
	Amplitude  float64 `json:"amplitude,omitempty"`
	FullScale  int     `json:"full_scale,omitempty"`
}

// GenerateChirp produces a unit-amplitude linear chirp.
func GenerateChirp(startFreq, endFreq, duration, sampleRate float64) (*signal.Signal, error) {
	c := &Chirp{
		StartFreq:  startFreq,
		EndFreq:    endFreq,
		Duration:   duration,
		SampleRate: sampleRate,
	}
	return c.Generate()
}

// Validate checks the chirp parameters.
func (c *Chirp) Validate() error {
	if err := validateTiming(c.Duration, c.SampleRate); err != nil {
		return err
	}
	if !(c.StartFreq >= 0) || !(c.EndFreq >= 0) {
		return fmt.Errorf("%w: frequencies must be >= 0 (start %g, end %g)", ErrInvalidParameter, c.StartFreq, c.EndFreq)
	}

	nyquist := c.SampleRate / 2
	if c.EndFreq > nyquist || c.StartFreq > nyquist {
		logging.WithFields(logging.Fields{
			"component":   "stimulus",
			"start_freq":  c.StartFreq,
			"end_freq":    c.EndFreq,
			"sample_rate": c.SampleRate,
		}).Warn("Chirp would alias above Nyquist")
		return fmt.Errorf("%w: sweep %g..%g Hz exceeds Nyquist %g Hz", ErrInvalidParameter, c.StartFreq, c.EndFreq, nyquist)
	}

	return validateLevel(c.Amplitude, c.FullScale)
}

// Samples returns round(Duration * SampleRate), or 0 when that is not a
// representable count.
func (c *Chirp) Samples() int {
	return sampleCount(c.Duration, c.SampleRate)
}

// InstantaneousFrequency returns the sweep frequency at time t seconds.
func (c *Chirp) InstantaneousFrequency(t float64) float64 {
	return c.StartFreq + (c.EndFreq-c.StartFreq)*t/c.Duration
}

// Generate creates the sweep.
//
// The phase integral gives:
//
//	x(t) = A * cos(2π * (f1*t + 0.5*k*t²)),  k = (f2-f1)/T
//
// The cosine form starts at full amplitude, as scipy.signal.chirp does.
func (c *Chirp) Generate() (*signal.Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	n := c.Samples()
	out := make([]float64, n)

	k := (c.EndFreq - c.StartFreq) / c.Duration
	amp := amplitudeOrUnity(c.Amplitude)

	for i := range out {
		t := float64(i) / c.SampleRate
		phase := 2 * math.Pi * (c.StartFreq*t + 0.5*k*t*t)
		out[i] = amp * math.Cos(phase)
	}

	applyFullScale(out, c.FullScale)

	logging.WithFields(logging.Fields{
		"component": "stimulus",
		"kind":      "chirp",
		"samples":   n,
	}).Debug("Generated chirp")

	return signal.FromOwned(out, c.SampleRate)
}

func validateTiming(duration, sampleRate float64) error {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return fmt.Errorf("%w: duration must be positive and finite, got %g", ErrInvalidParameter, duration)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %g", ErrInvalidParameter, sampleRate)
	}
	if n := math.Round(duration * sampleRate); n > MaxSamples {
		return fmt.Errorf("%w: %g s at %g Hz exceeds %d samples", ErrInvalidParameter, duration, sampleRate, MaxSamples)
	}
	if sampleCount(duration, sampleRate) == 0 {
		return fmt.Errorf("%w: %g s at %g Hz yields no samples", ErrInvalidParameter, duration, sampleRate)
	}
	return nil
}

func validateLevel(amplitude float64, fullScale int) error {
	if !(amplitude >= 0) || math.IsInf(amplitude, 0) {
		return fmt.Errorf("%w: amplitude must be >= 0, got %g", ErrInvalidParameter, amplitude)
	}
	if fullScale < 0 {
		return fmt.Errorf("%w: full scale must be >= 0, got %d", ErrInvalidParameter, fullScale)
	}
	return nil
}

func sampleCount(duration, sampleRate float64) int {
	n := math.Round(duration * sampleRate)
	if !(n > 0) || n > MaxSamples {
		return 0
	}
	return int(n)
}

func amplitudeOrUnity(a float64) float64 {
	if a == 0 {
		return 1
	}
	return a
}

func applyFullScale(out []float64, fullScale int) {
	if fullScale <= 0 {
		return
	}
	fs := float64(fullScale)
	for i, v := range out {
		out[i] = math.Trunc(v * fs)
	}
}
