package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesInput(t *testing.T) {
	in := []float64{1, 2, 3}
	s, err := New(in, 8000)
	require.NoError(t, err)

	in[0] = 99
	assert.Equal(t, 1.0, s.At(0))

	out := s.Samples()
	out[1] = 42
	assert.Equal(t, 2.0, s.At(1))
}

func TestNewRejectsBadRate(t *testing.T) {
	for _, rate := range []float64{0, -1} {
		_, err := New([]float64{1}, rate)
		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	}
}

func TestDurationAndTimeAxis(t *testing.T) {
	s, err := New(make([]float64, 48000), 24000)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, s.Duration(), 1e-12)

	axis := s.TimeAxis()
	require.Len(t, axis, 48000)
	assert.Equal(t, 0.0, axis[0])
	assert.InDelta(t, 1.0, axis[24000], 1e-12)
}

func TestWithSampleRateKeepsSamples(t *testing.T) {
	s, err := New([]float64{0.5, -0.5}, 48000)
	require.NoError(t, err)

	relabelled, err := s.WithSampleRate(24000)
	require.NoError(t, err)
	assert.Equal(t, 24000.0, relabelled.SampleRate())
	assert.Equal(t, s.Samples(), relabelled.Samples())
	assert.Equal(t, 48000.0, s.SampleRate())

	_, err = s.WithSampleRate(0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestCopyTo(t *testing.T) {
	s, err := New([]float64{1, 2, 3, 4, 5}, 10)
	require.NoError(t, err)

	dst := make([]float64, 3)
	assert.Equal(t, 3, s.CopyTo(dst, 1))
	assert.Equal(t, []float64{2, 3, 4}, dst)

	assert.Equal(t, 1, s.CopyTo(dst, 4))
	assert.Equal(t, 0, s.CopyTo(dst, 5))
}

func TestQuantize(t *testing.T) {
	s, err := New([]float64{0, 0.5, -0.5, 1, -1, 1.2, 0.99999}, 8000)
	require.NoError(t, err)

	q, err := Quantize(s, 32767)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 16383, -16383, 32767, -32767, 32767, 32766}, q)

	_, err = Quantize(s, 0)
	assert.ErrorIs(t, err, ErrInvalidFullScale)
}

func TestFromFixedPoint(t *testing.T) {
	s, err := FromFixedPoint([]float64{32767, -16384, 0}, 32767, 24000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.At(0), 1e-12)
	assert.InDelta(t, -0.5, s.At(1), 1e-4)

	raw, err := FromFixedPoint([]float64{7, -3}, 0, 24000)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, -3}, raw.Samples())
}

func TestPeak(t *testing.T) {
	s, err := New([]float64{0.1, -0.7, 0.3}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.7, s.Peak())
}
