// Package analysis runs the full response measurement: rate reconciliation,
// transfer function estimation, passband summary and spectrograms.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/algorithms/spectral"
	"github.com/RyanBlaney/sonido-probe/algorithms/transfer"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// Analyzer compares a reference stimulus with the output of a pipeline.
type Analyzer struct {
	config     *Config
	reconciler *transfer.Reconciler
	stft       *spectral.STFT
	logger     logging.Logger
}

// NewAnalyzer creates an analyzer; a nil config uses DefaultConfig.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "response_analyzer",
	})

	reconcilerOpts := []transfer.ReconcilerOption{
		transfer.WithTolerance(config.RateTolerance),
	}
	if config.Decimation > 0 {
		reconcilerOpts = append(reconcilerOpts, transfer.WithDecimation(config.Decimation))
	}

	return &Analyzer{
		config:     config,
		reconciler: transfer.NewReconciler(reconcilerOpts...),
		stft: spectral.NewSTFT(
			spectral.WithDisplayRange(config.Spectrogram.DisplayMinDB, config.Spectrogram.DisplayMaxDB),
			spectral.WithReferenceLevel(config.referenceLevel()),
			spectral.WithWorkers(config.Spectrogram.Workers),
		),
		logger: logger,
	}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() *Config { return a.config }

// Analyze reconciles the two signals, estimates the response of the pipeline
// that turned reference into observed and checks it against the configured
// expectations. A failed expectation is reported, not returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, reference, observed *signal.Signal) (*Report, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	logger := a.logger.WithContext(ctx)
	if reference != nil && observed != nil {
		logger = logger.WithFields(logging.Fields{
			"function":          "Analyze",
			"reference_samples": reference.Len(),
			"observed_samples":  observed.Len(),
		})
	}

	logger.Debug("Starting response analysis")

	alignment, err := a.reconciler.Reconcile(reference, observed)
	if err != nil {
		logger.Error(err, "Failed to reconcile sample rates")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lag, err := transfer.EstimateLag(reference, alignment.Observed, alignment.Decimation, a.config.MaxLagSamples)
	if err != nil {
		logger.Error(err, "Failed to estimate lag")
		return nil, err
	}

	estimatorOpts := []transfer.EstimatorOption{
		transfer.WithFloor(a.config.Floor),
		transfer.WithRateTolerance(a.config.RateTolerance),
	}
	if a.config.ObservedRate > 0 {
		estimatorOpts = append(estimatorOpts, transfer.WithResamplingRatio(alignment.Decimation))
	}

	response, err := transfer.NewEstimator(estimatorOpts...).Estimate(reference, observed)
	if err != nil {
		logger.Error(err, "Failed to estimate frequency response")
		return nil, err
	}

	report := &Report{
		ID:        generateID(reference, observed),
		Timestamp: time.Now(),
		Reference: describe(reference),
		Observed:  describe(observed),
		Alignment: alignment,
		Lag:       lag,
		Response:  response,
		Config:    a.config,
	}

	low, high := a.passband(alignment)
	summary, err := transfer.Summarize(response, low, high)
	switch {
	case errors.Is(err, transfer.ErrEmptyPassband):
		report.Violations = append(report.Violations, err.Error())
	case err != nil:
		return nil, err
	default:
		report.Summary = summary
		report.Violations = append(report.Violations, summary.Check(a.config.Expectations)...)
	}

	if a.config.Spectrogram.Enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.addSpectrograms(report, alignment); err != nil {
			logger.Error(err, "Failed to compute spectrograms")
			return nil, err
		}
	}

	report.Passed = len(report.Violations) == 0

	logger.Debug("Response analysis completed", logging.Fields{
		"report_id":    report.ID,
		"decimation":   alignment.Decimation,
		"lag_samples":  lag.Samples,
		"content_bins": response.ContentBins,
		"violations":   len(report.Violations),
	})

	return report, nil
}

// passband resolves the summary band, defaulting the upper edge to 90% of
// the effective observed Nyquist frequency.
func (a *Analyzer) passband(alignment *transfer.Alignment) (low, high float64) {
	low, high = a.config.PassbandLowHz, a.config.PassbandHighHz
	if high == 0 {
		high = 0.45 * alignment.EffectiveObservedRate
	}
	return low, high
}

func (a *Analyzer) addSpectrograms(report *Report, alignment *transfer.Alignment) error {
	var err error
	report.ReferenceSpectrogram, err = a.spectrogram(alignment.Reference, "reference")
	if err != nil {
		return err
	}
	report.ObservedSpectrogram, err = a.spectrogram(alignment.Observed, "observed")
	return err
}

// spectrogram returns nil, with a warning, for a signal shorter than the
// configured window.
func (a *Analyzer) spectrogram(sig *signal.Signal, role string) (*spectral.Spectrogram, error) {
	window := a.config.Spectrogram.Window
	if window.Length > sig.Len() {
		a.logger.Warn("Signal shorter than spectrogram window; skipping", logging.Fields{
			"signal":  role,
			"window":  window.Length,
			"samples": sig.Len(),
		})
		return nil, nil
	}
	return a.stft.Compute(sig, window)
}
