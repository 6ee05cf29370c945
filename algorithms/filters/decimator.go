package filters

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// DefaultCutoffRatio places the anti-aliasing corner at this fraction of the
// output sample rate.
const DefaultCutoffRatio = 0.45

// AntiAliasOrder is the order of the Butterworth anti-aliasing lowpass.
const AntiAliasOrder = 4

// Decimator lowpass filters a signal and keeps every factor-th sample. It
// is not safe for concurrent use.
type Decimator struct {
	factor     int
	sampleRate float64
	cutoff     float64
	chain      *biquad.Chain
	logger     logging.Logger
}

// NewDecimator creates a decimator for input at sampleRate. Factor 1 passes
// the signal through unfiltered.
func NewDecimator(factor int, sampleRate float64) (*Decimator, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: decimation factor %d", ErrInvalidFilter, factor)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidFilter, sampleRate)
	}

	d := &Decimator{
		factor:     factor,
		sampleRate: sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component": "decimator",
			"factor":    factor,
		}),
	}
	if factor == 1 {
		return d, nil
	}

	d.cutoff = DefaultCutoffRatio * sampleRate / float64(factor)
	sections := design.ButterworthLP(d.cutoff, AntiAliasOrder, sampleRate)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no lowpass design for %g Hz at %g Hz", ErrInvalidFilter, d.cutoff, sampleRate)
	}
	d.chain = biquad.NewChain(sections)
	return d, nil
}

// Factor returns the decimation factor.
func (d *Decimator) Factor() int { return d.factor }

// Cutoff returns the anti-aliasing corner in Hz, zero when unfiltered.
func (d *Decimator) Cutoff() float64 { return d.cutoff }

// Process filters sig from a cleared state and returns every factor-th
// sample, labelled at sampleRate/factor.
func (d *Decimator) Process(sig *signal.Signal) (*signal.Signal, error) {
	buf := sig.Samples()
	if d.chain != nil {
		d.chain.Reset()
		d.chain.ProcessBlock(buf)
	}

	out := make([]float64, 0, (len(buf)+d.factor-1)/d.factor)
	for i := 0; i < len(buf); i += d.factor {
		out = append(out, buf[i])
	}

	d.logger.Debug("Decimated signal", logging.Fields{
		"input_samples":  len(buf),
		"output_samples": len(out),
		"cutoff":         d.cutoff,
	})

	return signal.FromOwned(out, sig.SampleRate()/float64(d.factor))
}

// Response returns the linear gain of the anti-aliasing filter at frequency.
func (d *Decimator) Response(frequency float64) float64 {
	if d.chain == nil {
		return 1
	}
	return cmplx.Abs(d.chain.Response(frequency, d.sampleRate))
}
