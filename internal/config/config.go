// Package config loads analysis settings from defaults, an optional config
// file and SONIDO_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-probe/analysis"
)

// EnvPrefix prefixes every environment override, e.g.
// SONIDO_SPECTROGRAM_WINDOW_LENGTH.
const EnvPrefix = "SONIDO"

// Load builds an analysis.Config. Values are layered defaults < file < env.
// An empty path skips the file.
func Load(path string) (*analysis.Config, error) {
	v := viper.New()
	setDefaults(v, analysis.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg analysis.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so environment variables can override
// values that appear in no file.
func setDefaults(v *viper.Viper, d *analysis.Config) {
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("observed_rate", d.ObservedRate)
	v.SetDefault("decimation", d.Decimation)
	v.SetDefault("rate_tolerance", d.RateTolerance)
	v.SetDefault("floor", d.Floor)
	v.SetDefault("full_scale", d.FullScale)
	v.SetDefault("passband_low_hz", d.PassbandLowHz)
	v.SetDefault("passband_high_hz", d.PassbandHighHz)
	v.SetDefault("max_lag_samples", d.MaxLagSamples)

	v.SetDefault("expectations.max_ripple_db", d.Expectations.MaxRippleDB)
	v.SetDefault("expectations.min_mean_db", d.Expectations.MinMeanDB)
	v.SetDefault("expectations.max_peak_db", d.Expectations.MaxPeakDB)
	v.SetDefault("expectations.min_cutoff_hz", d.Expectations.MinCutoffHz)

	v.SetDefault("spectrogram.enabled", d.Spectrogram.Enabled)
	v.SetDefault("spectrogram.window.length", d.Spectrogram.Window.Length)
	v.SetDefault("spectrogram.window.hop", d.Spectrogram.Window.Hop)
	v.SetDefault("spectrogram.window.shape", string(d.Spectrogram.Window.Shape))
	v.SetDefault("spectrogram.window.beta", d.Spectrogram.Window.Beta)
	v.SetDefault("spectrogram.display_min_db", d.Spectrogram.DisplayMinDB)
	v.SetDefault("spectrogram.display_max_db", d.Spectrogram.DisplayMaxDB)
	v.SetDefault("spectrogram.workers", d.Spectrogram.Workers)
}
