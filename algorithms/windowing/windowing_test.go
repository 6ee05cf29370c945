package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKaiserSymmetricEndpoints(t *testing.T) {
	k, err := NewKaiser(9, 14, true)
	require.NoError(t, err)

	c := k.Coefficients()
	require.Len(t, c, 9)
	assert.InDelta(t, 1.0, c[4], 1e-12)
	assert.InDelta(t, 1.0/besselI0(14), c[0], 1e-15)
	for i := range c {
		assert.InDelta(t, c[i], c[len(c)-1-i], 1e-12)
	}
}

func TestKaiserPeriodicPeaksAtCenter(t *testing.T) {
	k, err := NewKaiser(8, 14, false)
	require.NoError(t, err)

	c := k.Coefficients()
	assert.InDelta(t, 1.0, c[4], 1e-12)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, c[4-i], c[4+i], 1e-12)
	}
}

func TestKaiserBetaZeroIsRectangular(t *testing.T) {
	k, err := NewKaiser(16, 0, false)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, k.Sum(), 1e-12)
}

func TestKaiserRejectsBadParameters(t *testing.T) {
	_, err := NewKaiser(0, 14, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewKaiser(16, -1, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestBesselI0(t *testing.T) {
	assert.Equal(t, 1.0, besselI0(0))
	assert.InDelta(t, 1.2660658777520082, besselI0(1), 1e-12)
	assert.InDelta(t, 2815.716628466254, besselI0(10), 1e-8)
}

func TestNewAllShapes(t *testing.T) {
	for _, shape := range Shapes() {
		t.Run(string(shape), func(t *testing.T) {
			w, err := New(shape, 64, DefaultKaiserBeta)
			require.NoError(t, err)
			assert.Equal(t, shape, w.Type())
			assert.Equal(t, 64, w.Size())

			for _, c := range w.Coefficients() {
				assert.False(t, math.IsNaN(c))
			}
			assert.Greater(t, w.Sum(), 0.0)
		})
	}
}

func TestNewSizeOne(t *testing.T) {
	for _, shape := range Shapes() {
		w, err := New(shape, 1, DefaultKaiserBeta)
		require.NoError(t, err)
		assert.Equal(t, []float64{1}, w.Coefficients())
	}
}

func TestNewRejectsUnknownShape(t *testing.T) {
	_, err := New("triangle-ish", 16, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = New(ShapeHann, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestNewAcceptsAnyCase(t *testing.T) {
	w, err := New("HANN", 16, 0)
	require.NoError(t, err)
	assert.Equal(t, ShapeHann, w.Type())

	ref, err := New(ShapeHann, 16, 0)
	require.NoError(t, err)
	assert.Equal(t, ref.Coefficients(), w.Coefficients())

	k, err := New("Kaiser", 16, 8)
	require.NoError(t, err)
	assert.Equal(t, ShapeKaiser, k.Type())
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape(" Hann ")
	require.NoError(t, err)
	assert.Equal(t, ShapeHann, s)

	s, err = ParseShape("KAISER")
	require.NoError(t, err)
	assert.Equal(t, ShapeKaiser, s)

	_, err = ParseShape("welch")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestApplyInPlace(t *testing.T) {
	w, err := New(ShapeRectangular, 4, 0)
	require.NoError(t, err)

	buf := []float64{1, 2, 3, 4}
	require.NoError(t, w.ApplyInPlace(buf))
	assert.Equal(t, []float64{1, 2, 3, 4}, buf)

	k, err := NewKaiser(4, 5, false)
	require.NoError(t, err)
	buf = []float64{1, 1, 1, 1}
	require.NoError(t, k.ApplyInPlace(buf))
	assert.Equal(t, k.Coefficients(), buf)

	assert.Error(t, k.ApplyInPlace(make([]float64, 3)))
}
