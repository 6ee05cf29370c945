// Package windowing builds the tapering windows applied to analysis frames.
package windowing

import (
	"errors"
	"fmt"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidWindow is returned for an unusable window request.
var ErrInvalidWindow = errors.New("windowing: invalid window")

// Shape names a window family.
type Shape string

const (
	ShapeKaiser      Shape = "kaiser"
	ShapeHann        Shape = "hann"
	ShapeHamming     Shape = "hamming"
	ShapeBlackman    Shape = "blackman"
	ShapeBartlett    Shape = "bartlett"
	ShapeFlatTop     Shape = "flattop"
	ShapeRectangular Shape = "rectangular"
)

// DefaultKaiserBeta is the beta used when none is given.
const DefaultKaiserBeta = 14.0

// Window is a fixed-length tapering window.
type Window interface {
	ApplyInPlace(signal []float64) error
	Coefficients() []float64
	Size() int
	Type() Shape
	Sum() float64
}

var tabulated = map[Shape]func(int) []float64{
	ShapeHann:        window.Hann,
	ShapeHamming:     window.Hamming,
	ShapeBlackman:    window.Blackman,
	ShapeBartlett:    window.Bartlett,
	ShapeFlatTop:     window.FlatTop,
	ShapeRectangular: window.Rectangular,
}

// ParseShape resolves a case-insensitive window name.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if s == ShapeKaiser {
		return s, nil
	}
	if _, ok := tabulated[s]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown shape %q", ErrInvalidWindow, name)
}

// Shapes lists every supported window family.
func Shapes() []Shape {
	return []Shape{
		ShapeKaiser, ShapeHann, ShapeHamming, ShapeBlackman,
		ShapeBartlett, ShapeFlatTop, ShapeRectangular,
	}
}

// New builds a window of the given shape. beta is only read for Kaiser,
// which is generated in its periodic form for frame analysis.
func New(shape Shape, size int, beta float64) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidWindow, size)
	}
	shape, err := ParseShape(string(shape))
	if err != nil {
		return nil, err
	}
	if shape == ShapeKaiser {
		return NewKaiser(size, beta, false)
	}

	gen := tabulated[shape]

	var coeffs []float64
	if size == 1 {
		coeffs = []float64{1}
	} else {
		coeffs = gen(size)
	}

	return &tabulatedWindow{shape: shape, coefficients: coeffs}, nil
}

type tabulatedWindow struct {
	shape        Shape
	coefficients []float64
}

func (w *tabulatedWindow) ApplyInPlace(signal []float64) error {
	return applyCoefficients(signal, w.coefficients)
}

func (w *tabulatedWindow) Coefficients() []float64 { return cloneCoefficients(w.coefficients) }
func (w *tabulatedWindow) Size() int               { return len(w.coefficients) }
func (w *tabulatedWindow) Type() Shape             { return w.shape }
func (w *tabulatedWindow) Sum() float64            { return sumCoefficients(w.coefficients) }

func applyCoefficients(signal, coeffs []float64) error {
	if len(signal) != len(coeffs) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(coeffs))
	}
	vecmath.MulBlockInPlace(signal, coeffs)
	return nil
}

func cloneCoefficients(c []float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

func sumCoefficients(c []float64) float64 {
	return floats.Sum(c)
}
