// Package sampleio reads and writes signals as newline-separated text, one
// sample per line. Fixed-point files hold integers scaled by a full-scale
// value such as 32767.
package sampleio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-probe/algorithms/signal"
)

// ErrMalformedSample is returned for a line that is not a number.
var ErrMalformedSample = errors.New("sampleio: malformed sample")

// Read parses one number per line. Blank lines and lines starting with '#'
// are skipped.
func Read(r io.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedSample, line, text)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

// ReadSignal reads samples and labels them with sampleRate. A positive
// fullScale divides every value by it.
func ReadSignal(r io.Reader, sampleRate float64, fullScale int) (*signal.Signal, error) {
	values, err := Read(r)
	if err != nil {
		return nil, err
	}
	return signal.FromFixedPoint(values, fullScale, sampleRate)
}

// ReadFile is ReadSignal on a named file.
func ReadFile(path string, sampleRate float64, fullScale int) (*signal.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sig, err := ReadSignal(f, sampleRate, fullScale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}

// Write emits one sample per line. A positive fullScale quantises the signal
// to integers first; otherwise values are written in shortest float form.
func Write(w io.Writer, s *signal.Signal, fullScale int) error {
	bw := bufio.NewWriter(w)

	if fullScale > 0 {
		ints, err := signal.Quantize(s, fullScale)
		if err != nil {
			return err
		}
		for _, v := range ints {
			bw.WriteString(strconv.Itoa(v))
			bw.WriteByte('\n')
		}
	} else {
		for _, v := range s.Samples() {
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			bw.WriteByte('\n')
		}
	}

	return bw.Flush()
}

// WriteFile is Write to a named file, truncating it.
func WriteFile(path string, s *signal.Signal, fullScale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, s, fullScale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
