package analysis

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/sonido-probe/algorithms/filters"
	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/algorithms/stimulus"
	"github.com/RyanBlaney/sonido-probe/algorithms/transfer"
	"github.com/RyanBlaney/sonido-probe/algorithms/windowing"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// AnalyzerTestSuite runs the analyzer against a 2 s chirp and a simulated
// pipeline that halves the sample rate.
type AnalyzerTestSuite struct {
	suite.Suite

	sampleRate float64
	reference  *signal.Signal
	decimated  *signal.Signal
}

// SetupSuite runs once before all tests
func (suite *AnalyzerTestSuite) SetupSuite() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})

	suite.sampleRate = 24000

	// band-limited below the decimated Nyquist so the halved signal does not alias
	ref, err := stimulus.GenerateChirp(0, 6000, 2, suite.sampleRate)
	suite.Require().NoError(err)
	suite.reference = ref

	src := ref.Samples()
	half := make([]float64, 0, len(src)/2)
	for i := 0; i < len(src); i += 2 {
		half = append(half, src[i])
	}
	// the pipeline output carries no rate of its own
	obs, err := signal.New(half, suite.sampleRate)
	suite.Require().NoError(err)
	suite.decimated = obs
}

func (suite *AnalyzerTestSuite) TearDownSuite() {
	logging.SetGlobalLogger(logging.NewDefaultLogger())
}

func (suite *AnalyzerTestSuite) config() *Config {
	cfg := DefaultConfig()
	cfg.FullScale = 0
	cfg.PassbandLowHz = 50
	cfg.PassbandHighHz = 5000
	return cfg
}

func (suite *AnalyzerTestSuite) TestIdentityPipelinePasses() {
	cfg := suite.config()
	cfg.Expectations = transfer.Expectations{MaxRippleDB: 0.1, MinMeanDB: -0.1}

	report, err := NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.reference)
	suite.Require().NoError(err)

	suite.Equal(1, report.Alignment.Decimation)
	suite.Require().NotNil(report.Summary)
	suite.InDelta(0.0, report.Summary.MeanDB, 1e-6)
	suite.True(report.Passed)
	suite.Empty(report.Violations)
	suite.Len(report.ID, 16)
}

func (suite *AnalyzerTestSuite) TestDecimatedPipeline() {
	report, err := NewAnalyzer(suite.config()).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)

	suite.Equal(2, report.Alignment.Decimation)
	suite.True(report.Alignment.Inferred)
	suite.Equal(12000.0, report.Alignment.EffectiveObservedRate)

	resp := report.Response
	suite.Equal(24000, resp.Len())
	suite.Equal(12000, resp.ContentBins)
	for i := resp.ContentBins; i < resp.Len(); i++ {
		suite.Require().Equal(resp.FloorDB, resp.MagnitudeDB[i])
	}

	// every other sample keeps half of the DFT sum
	suite.Require().NotNil(report.Summary)
	suite.InDelta(20*math.Log10(0.5), report.Summary.MeanDB, 0.5)

	suite.Equal(48000, report.Reference.Samples)
	suite.Equal(24000, report.Observed.Samples)

	suite.Require().NotNil(report.Lag)
	suite.Equal(0, report.Lag.Samples)
	suite.InDelta(1.0, report.Lag.Correlation, 1e-9)
}

func (suite *AnalyzerTestSuite) TestFilteredPipeline() {
	wide, err := stimulus.GenerateChirp(0, 12000, 2, suite.sampleRate)
	suite.Require().NoError(err)

	dec, err := filters.NewDecimator(2, suite.sampleRate)
	suite.Require().NoError(err)
	out, err := dec.Process(wide)
	suite.Require().NoError(err)

	cfg := suite.config()
	cfg.PassbandHighHz = 3000
	cfg.Expectations = transfer.Expectations{MaxRippleDB: 1, MinMeanDB: -7}

	report, err := NewAnalyzer(cfg).Analyze(context.Background(), wide, out)
	suite.Require().NoError(err)

	suite.Equal(2, report.Alignment.Decimation)
	suite.Require().NotNil(report.Summary)
	suite.InDelta(20*math.Log10(0.5), report.Summary.MeanDB, 0.5)
	suite.Less(report.Summary.RippleDB, 1.0)
	suite.True(report.Passed, report.Violations)

	suite.InDelta(0, report.Lag.Samples, 3)
	suite.Zero(report.Response.WeakBins)
}

func (suite *AnalyzerTestSuite) TestDefaultPassbandFollowsEffectiveRate() {
	cfg := suite.config()
	cfg.PassbandHighHz = 0

	report, err := NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)
	suite.Require().NotNil(report.Summary)
	suite.InDelta(5400.0, report.Summary.HighHz, 1e-9)
}

func (suite *AnalyzerTestSuite) TestSpectrograms() {
	report, err := NewAnalyzer(suite.config()).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)

	ref := report.ReferenceSpectrogram
	obs := report.ObservedSpectrogram
	suite.Require().NotNil(ref)
	suite.Require().NotNil(obs)

	suite.Equal((48000-1024)/512+1, ref.TimeFrames())
	suite.Equal(513, ref.FreqBins())
	suite.Equal(12000.0, obs.SampleRate)
	suite.Equal((24000-1024)/512+1, obs.TimeFrames())

	cfg := suite.config()
	cfg.Spectrogram.Enabled = false
	report, err = NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)
	suite.Nil(report.ReferenceSpectrogram)
	suite.Nil(report.ObservedSpectrogram)
}

func (suite *AnalyzerTestSuite) TestShortReferenceSkipsSpectrogram() {
	src := suite.reference.Samples()
	ref, err := signal.New(src[:800], suite.sampleRate)
	suite.Require().NoError(err)

	report, err := NewAnalyzer(suite.config()).Analyze(context.Background(), ref, ref)
	suite.Require().NoError(err)
	suite.Nil(report.ReferenceSpectrogram)
	suite.Nil(report.ObservedSpectrogram)
	suite.Equal(400, report.Response.Len())
}

func (suite *AnalyzerTestSuite) TestWindowShapeIsCaseInsensitive() {
	cfg := suite.config()
	cfg.Spectrogram.Window.Shape = "HANN"
	suite.Require().NoError(cfg.Validate())
	suite.Equal(windowing.ShapeHann, cfg.Spectrogram.Window.Shape)

	cfg.Spectrogram.Window.Shape = "Blackman"
	report, err := NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)
	suite.Require().NotNil(report.ReferenceSpectrogram)
	suite.Equal(windowing.ShapeBlackman, report.ReferenceSpectrogram.Window.Shape)
}

func (suite *AnalyzerTestSuite) TestStatedObservedRate() {
	cfg := suite.config()
	cfg.ObservedRate = 12000

	labelled, err := suite.decimated.WithSampleRate(12000)
	suite.Require().NoError(err)
	_, err = NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, labelled)
	suite.NoError(err)

	cfg.ObservedRate = 11000
	wrong, err := suite.decimated.WithSampleRate(11000)
	suite.Require().NoError(err)
	_, err = NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, wrong)
	suite.ErrorIs(err, transfer.ErrIncompatibleRates)
}

func (suite *AnalyzerTestSuite) TestNonIntegerRatio() {
	src := suite.reference.Samples()
	obs, err := signal.New(src[:len(src)*2/3], suite.sampleRate)
	suite.Require().NoError(err)

	_, err = NewAnalyzer(suite.config()).Analyze(context.Background(), suite.reference, obs)
	suite.ErrorIs(err, transfer.ErrUnsupportedRateRatio)
}

func (suite *AnalyzerTestSuite) TestEmptyPassbandIsViolation() {
	cfg := suite.config()
	cfg.PassbandLowHz = 8000
	cfg.PassbandHighHz = 9000

	report, err := NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)
	suite.Nil(report.Summary)
	suite.False(report.Passed)
	suite.Len(report.Violations, 1)
}

func (suite *AnalyzerTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(suite.config()).Analyze(ctx, suite.reference, suite.decimated)
	suite.ErrorIs(err, context.Canceled)
}

func (suite *AnalyzerTestSuite) TestReportSerializes() {
	cfg := suite.config()
	cfg.Spectrogram.Enabled = false

	report, err := NewAnalyzer(cfg).Analyze(context.Background(), suite.reference, suite.decimated)
	suite.Require().NoError(err)

	data, err := json.Marshal(report)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Contains(decoded, "response")
	suite.Contains(decoded, "alignment")
	suite.Contains(decoded, "lag")
	suite.NotContains(decoded, "reference_spectrogram")
}

func TestAnalyzerTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero rate", func(c *Config) { c.SampleRate = 0 }},
		{"negative observed rate", func(c *Config) { c.ObservedRate = -1 }},
		{"negative decimation", func(c *Config) { c.Decimation = -2 }},
		{"negative tolerance", func(c *Config) { c.RateTolerance = -0.1 }},
		{"zero floor", func(c *Config) { c.Floor = 0 }},
		{"negative max lag", func(c *Config) { c.MaxLagSamples = -1 }},
		{"inverted passband", func(c *Config) { c.PassbandLowHz, c.PassbandHighHz = 5000, 100 }},
		{"zero hop", func(c *Config) { c.Spectrogram.Window.Hop = 0 }},
		{"unknown window", func(c *Config) { c.Spectrogram.Window.Shape = "gauss" }},
		{"inverted display range", func(c *Config) { c.Spectrogram.DisplayMinDB = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := NewAnalyzer(cfg).Analyze(context.Background(), nil, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
