package transfer

import (
	"fmt"

	"github.com/RyanBlaney/sonido-probe/algorithms/common"
)

// Summary condenses a frequency response over a passband.
type Summary struct {
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
	Bins   int     `json:"bins"`

	MeanDB        float64 `json:"mean_db"`
	StdDevDB      float64 `json:"stddev_db"`
	MinDB         float64 `json:"min_db"`
	PeakDB        float64 `json:"peak_db"`
	PeakFrequency float64 `json:"peak_frequency"`
	RippleDB      float64 `json:"ripple_db"` // PeakDB - MinDB

	// CutoffHz is the first content bin above HighHz more than 3 dB below
	// MeanDB, or 0 if the response never drops that far.
	CutoffHz float64 `json:"cutoff_hz"`
}

// Expectations bound an acceptable response. Zero fields are not checked.
type Expectations struct {
	MaxRippleDB float64 `json:"max_ripple_db" mapstructure:"max_ripple_db"`
	MinMeanDB   float64 `json:"min_mean_db" mapstructure:"min_mean_db"`
	MaxPeakDB   float64 `json:"max_peak_db" mapstructure:"max_peak_db"`
	MinCutoffHz float64 `json:"min_cutoff_hz" mapstructure:"min_cutoff_hz"`
}

// Summarize computes passband statistics over content bins with
// lowHz <= f <= highHz.
func Summarize(resp *FrequencyResponse, lowHz, highHz float64) (*Summary, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrEmptyPassband)
	}

	content := min(resp.ContentBins, resp.Len())

	var band, freqs []float64
	for i := range content {
		f := resp.Frequencies[i]
		if f >= lowHz && f <= highHz {
			band = append(band, resp.MagnitudeDB[i])
			freqs = append(freqs, f)
		}
	}
	if len(band) == 0 {
		return nil, fmt.Errorf("%w: %g..%g Hz", ErrEmptyPassband, lowHz, highHz)
	}

	lo, hi := common.MinMax(band)
	s := &Summary{
		LowHz:         lowHz,
		HighHz:        highHz,
		Bins:          len(band),
		MeanDB:        common.Mean(band),
		StdDevDB:      common.StandardDeviation(band),
		MinDB:         lo,
		PeakDB:        hi,
		PeakFrequency: freqs[common.ArgMax(band)],
		RippleDB:      hi - lo,
	}

	threshold := s.MeanDB - 3
	for i := range content {
		if resp.Frequencies[i] > highHz && resp.MagnitudeDB[i] < threshold {
			s.CutoffHz = resp.Frequencies[i]
			break
		}
	}

	return s, nil
}

// Check returns one message per violated expectation.
func (s *Summary) Check(exp Expectations) []string {
	var violations []string

	if exp.MaxRippleDB > 0 && s.RippleDB > exp.MaxRippleDB {
		violations = append(violations, fmt.Sprintf("passband ripple %.2f dB exceeds %.2f dB", s.RippleDB, exp.MaxRippleDB))
	}
	if exp.MinMeanDB != 0 && s.MeanDB < exp.MinMeanDB {
		violations = append(violations, fmt.Sprintf("passband mean %.2f dB below %.2f dB", s.MeanDB, exp.MinMeanDB))
	}
	if exp.MaxPeakDB != 0 && s.PeakDB > exp.MaxPeakDB {
		violations = append(violations, fmt.Sprintf("peak %.2f dB at %.1f Hz exceeds %.2f dB", s.PeakDB, s.PeakFrequency, exp.MaxPeakDB))
	}
	if exp.MinCutoffHz > 0 && s.CutoffHz > 0 && s.CutoffHz < exp.MinCutoffHz {
		violations = append(violations, fmt.Sprintf("-3 dB cutoff %.1f Hz below %.1f Hz", s.CutoffHz, exp.MinCutoffHz))
	}

	return violations
}
