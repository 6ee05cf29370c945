package stimulus

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChirpLength(t *testing.T) {
	sig, err := GenerateChirp(0, 12000, 2, 24000)
	require.NoError(t, err)
	assert.Equal(t, 48000, sig.Len())
	assert.Equal(t, 24000.0, sig.SampleRate())
	assert.LessOrEqual(t, sig.Peak(), 1.0)
	assert.InDelta(t, 1.0, sig.At(0), 1e-12)
}

func TestChirpInstantaneousFrequency(t *testing.T) {
	c := &Chirp{StartFreq: 0, EndFreq: 12000, Duration: 2, SampleRate: 24000}
	assert.InDelta(t, 6000.0, c.InstantaneousFrequency(1), 1e-9)
	assert.InDelta(t, 12000.0, c.InstantaneousFrequency(2), 1e-9)

	sig, err := c.Generate()
	require.NoError(t, err)

	const size = 1024
	frame := sig.Samples()[24000-size/2 : 24000+size/2]
	coeffs := fft.FFTReal(frame)

	peak, peakMag := 0, 0.0
	for k := 0; k <= size/2; k++ {
		if m := cmplx.Abs(coeffs[k]); m > peakMag {
			peak, peakMag = k, m
		}
	}

	freq := float64(peak) * 24000 / size
	assert.InDelta(t, 6000.0, freq, 120)
}

func TestChirpDeterministic(t *testing.T) {
	a, err := GenerateChirp(20, 8000, 0.5, 16000)
	require.NoError(t, err)
	b, err := GenerateChirp(20, 8000, 0.5, 16000)
	require.NoError(t, err)
	assert.Equal(t, a.Samples(), b.Samples())
}

func TestChirpNyquistEdgeAccepted(t *testing.T) {
	sig, err := GenerateChirp(0, 12000, 1, 24000)
	require.NoError(t, err)
	assert.Equal(t, 24000, sig.Len())
}

func TestChirpFullScale(t *testing.T) {
	c := &Chirp{StartFreq: 0, EndFreq: 12000, Duration: 2, SampleRate: 24000, FullScale: 32767}
	sig, err := c.Generate()
	require.NoError(t, err)

	assert.Equal(t, 32767.0, sig.At(0))
	for _, v := range sig.Samples() {
		assert.LessOrEqual(t, math.Abs(v), 32767.0)
		assert.Equal(t, math.Trunc(v), v)
	}
}

func TestChirpInvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		chirp Chirp
	}{
		{"zero duration", Chirp{EndFreq: 100, Duration: 0, SampleRate: 1000}},
		{"negative duration", Chirp{EndFreq: 100, Duration: -1, SampleRate: 1000}},
		{"zero rate", Chirp{EndFreq: 100, Duration: 1, SampleRate: 0}},
		{"above nyquist", Chirp{EndFreq: 12001, Duration: 2, SampleRate: 24000}},
		{"start above nyquist", Chirp{StartFreq: 13000, EndFreq: 100, Duration: 2, SampleRate: 24000}},
		{"negative frequency", Chirp{StartFreq: -5, EndFreq: 100, Duration: 1, SampleRate: 1000}},
		{"no samples", Chirp{EndFreq: 100, Duration: 1e-6, SampleRate: 1000}},
		{"negative amplitude", Chirp{EndFreq: 100, Duration: 1, SampleRate: 1000, Amplitude: -1}},
		{"negative full scale", Chirp{EndFreq: 100, Duration: 1, SampleRate: 1000, FullScale: -1}},
		{"infinite rate", Chirp{EndFreq: 100, Duration: 1, SampleRate: math.Inf(1)}},
		{"nan rate", Chirp{EndFreq: 100, Duration: 1, SampleRate: math.NaN()}},
		{"infinite duration", Chirp{EndFreq: 100, Duration: math.Inf(1), SampleRate: 1000}},
		{"too many samples", Chirp{EndFreq: 100, Duration: 1e300, SampleRate: 48000}},
		{"nan start", Chirp{StartFreq: math.NaN(), EndFreq: 100, Duration: 0.01, SampleRate: 1000}},
		{"nan end", Chirp{EndFreq: math.NaN(), Duration: 0.01, SampleRate: 1000}},
		{"infinite end", Chirp{EndFreq: math.Inf(1), Duration: 0.01, SampleRate: 1000}},
		{"nan amplitude", Chirp{EndFreq: 100, Duration: 1, SampleRate: 1000, Amplitude: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := tt.chirp.Generate()
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, sig)
		})
	}
}

func TestGenerateTone(t *testing.T) {
	sig, err := GenerateTone(1000, 0.5, 0.01, 8000)
	require.NoError(t, err)
	require.Equal(t, 80, sig.Len())

	assert.Equal(t, 0.0, sig.At(0))
	assert.InDelta(t, 0.5, sig.At(2), 1e-12) // quarter period at 8 samples/cycle
	assert.InDelta(t, 0.5, sig.Peak(), 1e-12)
}

func TestGenerateToneSilence(t *testing.T) {
	sig, err := GenerateTone(440, 0, 0.1, 8000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sig.Peak())
}

func TestGenerateToneInvalid(t *testing.T) {
	_, err := GenerateTone(5000, 1, 1, 8000)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = GenerateTone(100, -1, 1, 8000)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = GenerateTone(100, 1, 0, 8000)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	tests := []struct {
		name                      string
		freq, amp, duration, rate float64
	}{
		{"huge duration", 10, 1, 1e300, 48000},
		{"infinite rate", 10, 1, 1, math.Inf(1)},
		{"nan duration", 10, 1, math.NaN(), 8000},
		{"nan frequency", math.NaN(), 1, 1, 8000},
		{"infinite amplitude", 10, math.Inf(1), 1, 8000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := GenerateTone(tt.freq, tt.amp, tt.duration, tt.rate)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, sig)
		})
	}
}

func TestSamplesNeverOverflow(t *testing.T) {
	c := Chirp{EndFreq: 100, Duration: 1e300, SampleRate: 48000}
	assert.Equal(t, 0, c.Samples())

	tone := Tone{Frequency: 10, Duration: 1, SampleRate: math.Inf(1)}
	assert.Equal(t, 0, tone.Samples())
}
