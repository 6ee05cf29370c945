package analysis

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
	"github.com/RyanBlaney/sonido-probe/algorithms/spectral"
	"github.com/RyanBlaney/sonido-probe/algorithms/transfer"
	"github.com/RyanBlaney/sonido-probe/algorithms/windowing"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("analysis: invalid config")

// Config holds configuration for a response analysis run.
type Config struct {
	// SampleRate labels reference samples read from text files.
	SampleRate float64 `json:"sample_rate" mapstructure:"sample_rate"`

	// ObservedRate, when positive, labels observed samples and enables the
	// rate check against SampleRate/Decimation. Zero leaves the rate to be
	// derived from the decimation.
	ObservedRate float64 `json:"observed_rate,omitempty" mapstructure:"observed_rate"`

	// Decimation is the integer downsampling factor of the pipeline; zero
	// infers it from the signal lengths.
	Decimation    int     `json:"decimation,omitempty" mapstructure:"decimation"`
	RateTolerance float64 `json:"rate_tolerance" mapstructure:"rate_tolerance"`

	// Floor is the linear magnitude used where no ratio can be formed.
	Floor float64 `json:"floor" mapstructure:"floor"`

	// FullScale is the fixed-point full-scale value of the sample files and
	// the 0 dB reference of spectrograms.
	FullScale int `json:"full_scale" mapstructure:"full_scale"`

	// Passband limits for the summary. A zero high edge means 90% of the
	// effective observed Nyquist frequency.
	PassbandLowHz  float64 `json:"passband_low_hz" mapstructure:"passband_low_hz"`
	PassbandHighHz float64 `json:"passband_high_hz" mapstructure:"passband_high_hz"`

	// MaxLagSamples bounds the delay search in observed samples; zero
	// searches every lag.
	MaxLagSamples int `json:"max_lag_samples,omitempty" mapstructure:"max_lag_samples"`

	Expectations transfer.Expectations `json:"expectations" mapstructure:"expectations"`

	Spectrogram SpectrogramConfig `json:"spectrogram" mapstructure:"spectrogram"`
}

// SpectrogramConfig controls the optional spectrograms of a report.
type SpectrogramConfig struct {
	Enabled      bool                `json:"enabled" mapstructure:"enabled"`
	Window       spectral.WindowSpec `json:"window" mapstructure:"window"`
	DisplayMinDB float64             `json:"display_min_db" mapstructure:"display_min_db"`
	DisplayMaxDB float64             `json:"display_max_db" mapstructure:"display_max_db"`
	Workers      int                 `json:"workers,omitempty" mapstructure:"workers"`
}

// DefaultConfig returns the default analysis configuration: a 24 kHz
// reference, 16-bit sample files and Kaiser(14) spectrograms.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     24000,
		RateTolerance:  transfer.DefaultRateTolerance,
		Floor:          common.DefaultFloor,
		FullScale:      32767,
		PassbandLowHz:  20,
		PassbandHighHz: 0,
		Spectrogram: SpectrogramConfig{
			Enabled:      true,
			Window:       spectral.DefaultWindowSpec(),
			DisplayMinDB: spectral.DefaultDisplayMinDB,
			DisplayMaxDB: spectral.DefaultDisplayMaxDB,
		},
	}
}

// Validate checks the configuration for values no analysis can use and
// normalises the spectrogram window shape name.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample_rate must be positive, got %g", ErrInvalidConfig, c.SampleRate)
	}
	if c.ObservedRate < 0 {
		return fmt.Errorf("%w: observed_rate must be >= 0, got %g", ErrInvalidConfig, c.ObservedRate)
	}
	if c.Decimation < 0 {
		return fmt.Errorf("%w: decimation must be >= 0, got %d", ErrInvalidConfig, c.Decimation)
	}
	if c.RateTolerance < 0 {
		return fmt.Errorf("%w: rate_tolerance must be >= 0, got %g", ErrInvalidConfig, c.RateTolerance)
	}
	if !(c.Floor > 0) {
		return fmt.Errorf("%w: floor must be positive, got %g", ErrInvalidConfig, c.Floor)
	}
	if c.FullScale < 0 {
		return fmt.Errorf("%w: full_scale must be >= 0, got %d", ErrInvalidConfig, c.FullScale)
	}
	if c.MaxLagSamples < 0 {
		return fmt.Errorf("%w: max_lag_samples must be >= 0, got %d", ErrInvalidConfig, c.MaxLagSamples)
	}
	if c.PassbandHighHz != 0 && c.PassbandHighHz < c.PassbandLowHz {
		return fmt.Errorf("%w: passband %g..%g Hz is empty", ErrInvalidConfig, c.PassbandLowHz, c.PassbandHighHz)
	}

	if c.Spectrogram.Enabled {
		w := c.Spectrogram.Window
		if w.Length <= 0 || w.Hop <= 0 {
			return fmt.Errorf("%w: spectrogram window %d/%d", ErrInvalidConfig, w.Length, w.Hop)
		}
		shape, err := windowing.ParseShape(string(w.Shape))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Spectrogram.Window.Shape = shape
		if c.Spectrogram.DisplayMinDB >= c.Spectrogram.DisplayMaxDB {
			return fmt.Errorf("%w: display range %g..%g dB", ErrInvalidConfig,
				c.Spectrogram.DisplayMinDB, c.Spectrogram.DisplayMaxDB)
		}
	}

	return nil
}

// referenceLevel is the amplitude reading as 0 dB in spectrograms.
func (c *Config) referenceLevel() float64 {
	if c.FullScale > 0 {
		return float64(c.FullScale)
	}
	return 1
}
