// Package transfer estimates the frequency response of a pipeline from a
// reference stimulus and its observed output, and reconciles the sample
// rates of the two signals.
package transfer

import "errors"

var (
	// ErrLengthMismatch is returned when either signal is empty.
	ErrLengthMismatch = errors.New("transfer: length mismatch")

	// ErrIncompatibleRates is returned when the observed sample rate does not
	// match the reference rate divided by the stated resampling ratio.
	ErrIncompatibleRates = errors.New("transfer: incompatible sample rates")

	// ErrUnsupportedRateRatio is returned when the length ratio of the two
	// signals is not close enough to a positive integer.
	ErrUnsupportedRateRatio = errors.New("transfer: unsupported rate ratio")

	// ErrEmptyPassband is returned when no response bin falls inside the
	// requested summary band.
	ErrEmptyPassband = errors.New("transfer: no bins in passband")
)
