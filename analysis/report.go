package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
	"github.com/RyanBlaney/sonido-probe/algorithms/spectral"
	"github.com/RyanBlaney/sonido-probe/algorithms/transfer"
)

// SignalInfo describes one input of an analysis.
type SignalInfo struct {
	Samples    int     `json:"samples"`
	SampleRate float64 `json:"sample_rate"`
	Duration   float64 `json:"duration"` // seconds
	Peak       float64 `json:"peak"`
}

func describe(s *signal.Signal) SignalInfo {
	return SignalInfo{
		Samples:    s.Len(),
		SampleRate: s.SampleRate(),
		Duration:   s.Duration(),
		Peak:       s.Peak(),
	}
}

// Report is the outcome of comparing a reference with its observation.
type Report struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Reference SignalInfo `json:"reference"`
	Observed  SignalInfo `json:"observed"`

	Alignment *transfer.Alignment         `json:"alignment"`
	Lag       *transfer.Lag               `json:"lag"`
	Response  *transfer.FrequencyResponse `json:"response"`
	Summary   *transfer.Summary           `json:"summary,omitempty"`

	ReferenceSpectrogram *spectral.Spectrogram `json:"reference_spectrogram,omitempty"`
	ObservedSpectrogram  *spectral.Spectrogram `json:"observed_spectrogram,omitempty"`

	Violations []string `json:"violations,omitempty"`
	Passed     bool     `json:"passed"`

	Config *Config `json:"config"`
}

func generateID(reference, observed *signal.Signal) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%d_%d_%g_%d_%g",
		time.Now().UnixNano(),
		reference.Len(),
		reference.SampleRate(),
		observed.Len(),
		observed.SampleRate())
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
