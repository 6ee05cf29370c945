package stimulus

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// Tone describes a pure sinusoid A*sin(2π f t).
type Tone struct {
	Frequency  float64 `json:"frequency"`   // Hz
	Amplitude  float64 `json:"amplitude"`   // linear peak
	Duration   float64 `json:"duration"`    // seconds
	SampleRate float64 `json:"sample_rate"` // Hz
	FullScale  int     `json:"full_scale,omitempty"`
}

// GenerateTone produces a pure sinusoid. A zero amplitude yields silence.
func GenerateTone(frequency, amplitude, duration, sampleRate float64) (*signal.Signal, error) {
	t := &Tone{
		Frequency:  frequency,
		Amplitude:  amplitude,
		Duration:   duration,
		SampleRate: sampleRate,
	}
	return t.Generate()
}

// Validate checks the tone parameters.
func (t *Tone) Validate() error {
	if err := validateTiming(t.Duration, t.SampleRate); err != nil {
		return err
	}
	if !(t.Frequency >= 0) {
		return fmt.Errorf("%w: frequency must be >= 0, got %g", ErrInvalidParameter, t.Frequency)
	}
	if nyquist := t.SampleRate / 2; t.Frequency > nyquist {
		logging.WithFields(logging.Fields{
			"component":   "stimulus",
			"frequency":   t.Frequency,
			"sample_rate": t.SampleRate,
		}).Warn("Tone would alias above Nyquist")
		return fmt.Errorf("%w: tone %g Hz exceeds Nyquist %g Hz", ErrInvalidParameter, t.Frequency, nyquist)
	}
	return validateLevel(t.Amplitude, t.FullScale)
}

// Samples returns round(Duration * SampleRate), or 0 when that is not a
// representable count.
func (t *Tone) Samples() int {
	return sampleCount(t.Duration, t.SampleRate)
}

// Generate creates the sinusoid.
func (t *Tone) Generate() (*signal.Signal, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, t.Samples())
	step := 2 * math.Pi * t.Frequency / t.SampleRate
	for i := range out {
		out[i] = t.Amplitude * math.Sin(step*float64(i))
	}

	applyFullScale(out, t.FullScale)

	return signal.FromOwned(out, t.SampleRate)
}
