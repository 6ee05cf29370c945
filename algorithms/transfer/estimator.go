package transfer

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/algorithms/spectral"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// DefaultRateTolerance is the relative sample-rate or length-ratio deviation
// accepted by default.
const DefaultRateTolerance = 0.01

// WeakBinDB is how far under its peak a reference bin may fall before the
// ratio at that bin is flagged as unreliable.
const WeakBinDB = 60.0

// FrequencyResponse is the estimated gain of a pipeline per frequency bin.
type FrequencyResponse struct {
	Frequencies []float64 `json:"frequencies"`  // k*rate/Nref, k = 0..Nref/2-1
	MagnitudeDB []float64 `json:"magnitude_db"` // same length as Frequencies
	SampleRate  float64   `json:"sample_rate"`  // reference rate

	// ContentBins counts the leading bins estimated from observed content.
	// Bins from ContentBins on hold FloorDB.
	ContentBins int     `json:"content_bins"`
	FloorDB     float64 `json:"floor_db"`

	// ReferenceFlatness is the spectral flatness of the reference over the
	// content bins. WeakBins counts content bins where the reference sits
	// more than WeakBinDB under its peak.
	ReferenceFlatness float64 `json:"reference_flatness"`
	WeakBins          int     `json:"weak_bins"`
}

// Len returns the number of bins.
func (r *FrequencyResponse) Len() int { return len(r.MagnitudeDB) }

// Estimator computes pointwise spectral ratios observed/reference.
type Estimator struct {
	floor     float64
	ratio     int
	tolerance float64
	transform *spectral.Transform
	logger    logging.Logger
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithFloor sets the linear magnitude substituted for bins without usable
// content. Non-positive values are ignored.
func WithFloor(floor float64) EstimatorOption {
	return func(e *Estimator) {
		if floor > 0 && !math.IsInf(floor, 0) {
			e.floor = floor
		}
	}
}

// WithResamplingRatio states the integer factor by which the observed
// signal was decimated. Estimate then rejects signals whose rates disagree.
func WithResamplingRatio(d int) EstimatorOption {
	return func(e *Estimator) {
		e.ratio = d
	}
}

// WithRateTolerance sets the relative rate deviation accepted with a
// stated resampling ratio.
func WithRateTolerance(tol float64) EstimatorOption {
	return func(e *Estimator) {
		if tol >= 0 {
			e.tolerance = tol
		}
	}
}

// NewEstimator creates a new response estimator.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		floor:     common.DefaultFloor,
		tolerance: DefaultRateTolerance,
		transform: spectral.NewTransform(),
		logger: logging.WithFields(logging.Fields{
			"component": "transfer_estimator",
		}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Floor returns the linear floor magnitude.
func (e *Estimator) Floor() float64 { return e.floor }

// Estimate returns 20*log10(|Cobs[i]/Cref[i]|) over the first Nref/2 bins of
// the full transforms. Bins at or past Nobs/2 hold the floor, as do bins whose
// ratio is zero, tiny or not finite.
func (e *Estimator) Estimate(reference, observed *signal.Signal) (*FrequencyResponse, error) {
	if reference == nil || reference.IsEmpty() {
		return nil, fmt.Errorf("%w: reference is empty", ErrLengthMismatch)
	}
	if observed == nil || observed.IsEmpty() {
		return nil, fmt.Errorf("%w: observed is empty", ErrLengthMismatch)
	}
	if err := e.checkRates(reference, observed); err != nil {
		return nil, err
	}

	cref, err := e.transform.Forward(reference)
	if err != nil {
		return nil, err
	}
	cobs, err := e.transform.Forward(observed)
	if err != nil {
		return nil, err
	}

	nRef := cref.Len()
	nObs := cobs.Len()
	bins := nRef / 2
	floorDB := common.AmplitudeToDB(e.floor, e.floor)

	resp := &FrequencyResponse{
		Frequencies: make([]float64, bins),
		MagnitudeDB: make([]float64, bins),
		SampleRate:  reference.SampleRate(),
		FloorDB:     floorDB,
	}

	refMags := make([]float64, 0, bins)
	for i := range bins {
		resp.Frequencies[i] = spectral.BinFrequency(i, nRef, reference.SampleRate())

		// i < Nobs/2 in real arithmetic
		if 2*i >= nObs {
			resp.MagnitudeDB[i] = floorDB
			continue
		}

		mag := cmplx.Abs(cobs.At(i) / cref.At(i))
		resp.MagnitudeDB[i] = common.AmplitudeToDB(mag, e.floor)
		resp.ContentBins++
		refMags = append(refMags, cmplx.Abs(cref.At(i)))
	}

	resp.ReferenceFlatness = spectral.Flatness(refMags, e.floor)
	resp.WeakBins = spectral.WeakBins(refMags, WeakBinDB)

	fields := logging.Fields{
		"reference_samples": nRef,
		"observed_samples":  nObs,
		"bins":              bins,
		"content_bins":      resp.ContentBins,
	}
	if padded := bins - resp.ContentBins; padded > 0 {
		fields["floor_bins"] = padded
		e.logger.Warn("Padding bins beyond observed content with floor", fields)
	}
	if resp.WeakBins > 0 {
		e.logger.Warn("Reference lacks energy in some bins; ratios there are unreliable", logging.Fields{
			"weak_bins":          resp.WeakBins,
			"reference_flatness": resp.ReferenceFlatness,
		})
	}
	e.logger.Debug("Estimated frequency response", fields)

	return resp, nil
}

func (e *Estimator) checkRates(reference, observed *signal.Signal) error {
	if e.ratio <= 0 {
		return nil
	}

	expected := reference.SampleRate() / float64(e.ratio)
	if dev := common.RelativeDifference(observed.SampleRate(), expected); dev > e.tolerance {
		return fmt.Errorf("%w: observed rate %g Hz, expected %g Hz for ratio %d",
			ErrIncompatibleRates, observed.SampleRate(), expected, e.ratio)
	}
	return nil
}
