package spectral

import (
	"fmt"
	"runtime"
	"sync"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/algorithms/windowing"
	"github.com/RyanBlaney/sonido-probe/logging"
)

// ErrInvalidWindow is returned for an unusable window length, hop or shape.
var ErrInvalidWindow = windowing.ErrInvalidWindow

const (
	DefaultDisplayMinDB = -200.0
	DefaultDisplayMaxDB = 1.0
)

// WindowSpec configures the frames of a spectrogram.
type WindowSpec struct {
	Length int             `json:"length" mapstructure:"length"` // samples per frame
	Hop    int             `json:"hop" mapstructure:"hop"`       // samples between frame starts
	Shape  windowing.Shape `json:"shape" mapstructure:"shape"`
	Beta   float64         `json:"beta,omitempty" mapstructure:"beta"` // Kaiser only
}

// DefaultWindowSpec returns a 1024-sample Kaiser(14) window with 50% overlap.
func DefaultWindowSpec() WindowSpec {
	return WindowSpec{
		Length: 1024,
		Hop:    512,
		Shape:  windowing.ShapeKaiser,
		Beta:   windowing.DefaultKaiserBeta,
	}
}

// Frames returns floor((n-Length)/Hop)+1, or 0 if the signal is too short.
func (w WindowSpec) Frames(n int) int {
	if w.Length <= 0 || w.Hop <= 0 || w.Length > n {
		return 0
	}
	return (n-w.Length)/w.Hop + 1
}

// Spectrogram is a magnitude-in-dB grid indexed [frequency][time].
type Spectrogram struct {
	Times       []float64   `json:"times"`        // frame centres, seconds
	Frequencies []float64   `json:"frequencies"`  // Hz
	MagnitudeDB [][]float64 `json:"magnitude_db"` // [len(Frequencies)][len(Times)]
	SampleRate  float64     `json:"sample_rate"`
	Window      WindowSpec  `json:"window"`
	MinDB       float64     `json:"min_db"`
	MaxDB       float64     `json:"max_db"`
}

// TimeFrames returns the number of columns.
func (s *Spectrogram) TimeFrames() int { return len(s.Times) }

// FreqBins returns the number of rows.
func (s *Spectrogram) FreqBins() int { return len(s.Frequencies) }

// STFT computes short-time Fourier transform spectrograms.
type STFT struct {
	minDB          float64
	maxDB          float64
	referenceLevel float64
	workers        int
	logger         logging.Logger
}

// STFTOption configures an STFT.
type STFTOption func(*STFT)

// WithDisplayRange sets the dB range values are clamped into.
func WithDisplayRange(minDB, maxDB float64) STFTOption {
	return func(s *STFT) {
		if minDB < maxDB {
			s.minDB, s.maxDB = minDB, maxDB
		}
	}
}

// WithReferenceLevel sets the amplitude that reads as 0 dB, e.g. 32767 for
// fixed-point input.
func WithReferenceLevel(level float64) STFTOption {
	return func(s *STFT) {
		if level > 0 {
			s.referenceLevel = level
		}
	}
}

// WithWorkers fixes the worker count; n <= 0 picks one from the frame count.
func WithWorkers(n int) STFTOption {
	return func(s *STFT) {
		s.workers = n
	}
}

// NewSTFT creates a new STFT calculator.
func NewSTFT(opts ...STFTOption) *STFT {
	s := &STFT{
		minDB:          DefaultDisplayMinDB,
		maxDB:          DefaultDisplayMaxDB,
		referenceLevel: 1,
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute builds the spectrogram of sig. Frame j covers samples
// [j*Hop, j*Hop+Length) and is centred at (j*Hop + Length/2)/rate.
func (s *STFT) Compute(sig *signal.Signal, spec WindowSpec) (*Spectrogram, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signal", ErrInvalidWindow)
	}
	if spec.Length <= 0 {
		return nil, fmt.Errorf("%w: window length must be positive, got %d", ErrInvalidWindow, spec.Length)
	}
	if spec.Hop <= 0 {
		return nil, fmt.Errorf("%w: hop must be positive, got %d", ErrInvalidWindow, spec.Hop)
	}
	if spec.Length > sig.Len() {
		return nil, fmt.Errorf("%w: window length %d exceeds signal length %d", ErrInvalidWindow, spec.Length, sig.Len())
	}

	win, err := windowing.New(spec.Shape, spec.Length, spec.Beta)
	if err != nil {
		return nil, err
	}

	rate := sig.SampleRate()
	numFrames := spec.Frames(sig.Len())
	freqBins := spec.Length/2 + 1

	magnitude := make([][]float64, freqBins)
	for k := range magnitude {
		magnitude[k] = make([]float64, numFrames)
	}

	times := make([]float64, numFrames)
	for j := range times {
		times[j] = float64(j*spec.Hop+spec.Length/2) / rate
	}

	freqs := make([]float64, freqBins)
	for k := range freqs {
		freqs[k] = BinFrequency(k, spec.Length, rate)
	}

	coeffs := win.Coefficients()
	scale := 2 / (win.Sum() * s.referenceLevel)
	samples := sig.Samples()

	numWorkers := s.workerCount(numFrames)

	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// gonum plans are not safe for concurrent use
			plan := fourier.NewFFT(spec.Length)
			frame := make([]float64, spec.Length)
			bins := make([]complex128, freqBins)
			re := make([]float64, freqBins)
			im := make([]float64, freqBins)
			mag := make([]float64, freqBins)

			for j := range jobs {
				start := j * spec.Hop
				copy(frame, samples[start:start+spec.Length])
				vecmath.MulBlockInPlace(frame, coeffs)

				bins = plan.Coefficients(bins, frame)
				for k, c := range bins {
					re[k] = real(c)
					im[k] = imag(c)
				}
				vecmath.Magnitude(mag, re, im)

				for k, m := range mag {
					db := common.AmplitudeToDB(m*scale, common.DefaultFloor)
					magnitude[k][j] = common.Clamp(db, s.minDB, s.maxDB)
				}
			}
		}()
	}

	for j := range numFrames {
		jobs <- j
	}
	close(jobs)

	wg.Wait()

	s.logger.Debug("Computed spectrogram", logging.Fields{
		"frames":  numFrames,
		"bins":    freqBins,
		"workers": numWorkers,
		"window":  string(spec.Shape),
	})

	return &Spectrogram{
		Times:       times,
		Frequencies: freqs,
		MagnitudeDB: magnitude,
		SampleRate:  rate,
		Window:      spec,
		MinDB:       s.minDB,
		MaxDB:       s.maxDB,
	}, nil
}

// workerCount picks how many goroutines process frames.
func (s *STFT) workerCount(numFrames int) int {
	if s.workers > 0 {
		return min(s.workers, numFrames)
	}

	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
