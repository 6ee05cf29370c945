package transfer

import (
	"fmt"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// Alignment places a reference and its decimated observation on one time
// base. Sample values are never changed; only the observed rate label is.
type Alignment struct {
	Reference *signal.Signal `json:"-"`
	Observed  *signal.Signal `json:"-"` // relabelled at EffectiveObservedRate

	Decimation            int     `json:"decimation"`
	LengthRatio           float64 `json:"length_ratio"` // len(reference)/len(observed)
	Inferred              bool    `json:"inferred"`
	EffectiveObservedRate float64 `json:"effective_observed_rate"`

	ReferenceTimes []float64 `json:"-"` // i / reference rate
	ObservedTimes  []float64 `json:"-"` // j*D / reference rate
}

// Reconciler infers or applies the integer decimation between a reference
// and an observed signal.
type Reconciler struct {
	decimation int
	tolerance  float64
	logger     logging.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithDecimation supplies D explicitly; the length ratio is then not checked.
func WithDecimation(d int) ReconcilerOption {
	return func(r *Reconciler) {
		r.decimation = d
	}
}

// WithTolerance sets the accepted relative deviation of the length ratio
// from the nearest integer.
func WithTolerance(tol float64) ReconcilerOption {
	return func(r *Reconciler) {
		if tol >= 0 {
			r.tolerance = tol
		}
	}
}

// NewReconciler creates a new rate reconciler.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		tolerance: DefaultRateTolerance,
		logger: logging.WithFields(logging.Fields{
			"component": "rate_reconciler",
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile computes D, the effective observed rate reference.rate/D and the
// shared time axes.
func (r *Reconciler) Reconcile(reference, observed *signal.Signal) (*Alignment, error) {
	if reference == nil || reference.IsEmpty() {
		return nil, fmt.Errorf("%w: reference is empty", ErrLengthMismatch)
	}
	if observed == nil || observed.IsEmpty() {
		return nil, fmt.Errorf("%w: observed is empty", ErrLengthMismatch)
	}

	lengthRatio := float64(reference.Len()) / float64(observed.Len())

	d := r.decimation
	inferred := d == 0
	if inferred {
		var dev float64
		d, dev = common.NearestInteger(lengthRatio)
		if d < 1 || dev > r.tolerance {
			r.logger.Warn("Length ratio is not an integer decimation", logging.Fields{
				"length_ratio": lengthRatio,
				"nearest":      d,
				"deviation":    dev,
				"tolerance":    r.tolerance,
			})
			return nil, fmt.Errorf("%w: length ratio %.4f is not within %.2g of an integer",
				ErrUnsupportedRateRatio, lengthRatio, r.tolerance)
		}
	} else if d < 1 {
		return nil, fmt.Errorf("%w: decimation %d", ErrUnsupportedRateRatio, d)
	}

	refRate := reference.SampleRate()
	effective := refRate / float64(d)

	aligned, err := observed.WithSampleRate(effective)
	if err != nil {
		return nil, err
	}

	obsTimes := make([]float64, observed.Len())
	for j := range obsTimes {
		obsTimes[j] = float64(j*d) / refRate
	}

	r.logger.Debug("Reconciled sample rates", logging.Fields{
		"decimation":     d,
		"inferred":       inferred,
		"effective_rate": effective,
	})

	return &Alignment{
		Reference:             reference,
		Observed:              aligned,
		Decimation:            d,
		LengthRatio:           lengthRatio,
		Inferred:              inferred,
		EffectiveObservedRate: effective,
		ReferenceTimes:        reference.TimeAxis(),
		ObservedTimes:         obsTimes,
	}, nil
}
