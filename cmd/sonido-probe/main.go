package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/RyanBlaney/sonido-probe/algorithms/filters"
	"github.com/RyanBlaney/sonido-probe/algorithms/stimulus"
	"github.com/RyanBlaney/sonido-probe/analysis"
	"github.com/RyanBlaney/sonido-probe/internal/config"
	"github.com/RyanBlaney/sonido-probe/internal/sampleio"
	"github.com/RyanBlaney/sonido-probe/logging"
)

var (
	version = "0.1.0"
)

// Globals are flags shared by every command.
type Globals struct {
	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,warning,error"`
	LogFormat string `help:"Log output format" default:"console" enum:"console,json"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version information"`
	Generate GenerateCmd      `cmd:"" help:"Write a stimulus signal as newline-separated samples"`
	Simulate SimulateCmd      `cmd:"" help:"Run a sample file through a reference decimating pipeline"`
	Analyze  AnalyzeCmd       `cmd:"" help:"Estimate the frequency response of a pipeline from its input and output"`
}

// GenerateCmd groups the stimulus generators.
type GenerateCmd struct {
	Chirp ChirpCmd `cmd:"" help:"Linear frequency sweep"`
	Tone  ToneCmd  `cmd:"" help:"Pure sinusoid"`
}

type ChirpCmd struct {
	Start     float64 `help:"Start frequency in Hz" default:"0"`
	End       float64 `help:"End frequency in Hz (at most rate/2)" default:"12000"`
	Duration  float64 `help:"Duration in seconds" default:"2"`
	Rate      float64 `help:"Sample rate in Hz" default:"24000"`
	FullScale int     `help:"Fixed-point full scale; 0 writes floats" default:"32767"`
	Out       string  `short:"o" type:"path" help:"Output file" default:"signals.txt"`
}

func (c *ChirpCmd) Run(g *Globals) error {
	sig, err := stimulus.GenerateChirp(c.Start, c.End, c.Duration, c.Rate)
	if err != nil {
		return err
	}
	if err := sampleio.WriteFile(c.Out, sig, c.FullScale); err != nil {
		return err
	}

	logging.Info("Wrote chirp", logging.Fields{
		"path":    c.Out,
		"samples": sig.Len(),
		"start":   c.Start,
		"end":     c.End,
	})
	return nil
}

type ToneCmd struct {
	Freq      float64 `help:"Frequency in Hz" default:"1000"`
	Amplitude float64 `help:"Linear peak amplitude" default:"1"`
	Duration  float64 `help:"Duration in seconds" default:"2"`
	Rate      float64 `help:"Sample rate in Hz" default:"24000"`
	FullScale int     `help:"Fixed-point full scale; 0 writes floats" default:"32767"`
	Out       string  `short:"o" type:"path" help:"Output file" default:"tone.txt"`
}

func (c *ToneCmd) Run(g *Globals) error {
	sig, err := stimulus.GenerateTone(c.Freq, c.Amplitude, c.Duration, c.Rate)
	if err != nil {
		return err
	}
	if err := sampleio.WriteFile(c.Out, sig, c.FullScale); err != nil {
		return err
	}

	logging.Info("Wrote tone", logging.Fields{
		"path":      c.Out,
		"samples":   sig.Len(),
		"frequency": c.Freq,
	})
	return nil
}

type SimulateCmd struct {
	Input     string  `arg:"" type:"existingfile" help:"Samples to process"`
	Factor    int     `help:"Integer decimation factor" default:"2"`
	Rate      float64 `help:"Input sample rate in Hz" default:"24000"`
	FullScale int     `help:"Fixed-point full scale of both files; 0 for floats" default:"32767"`
	Out       string  `short:"o" type:"path" help:"Output file" default:"result.txt"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	in, err := sampleio.ReadFile(c.Input, c.Rate, c.FullScale)
	if err != nil {
		return err
	}

	dec, err := filters.NewDecimator(c.Factor, c.Rate)
	if err != nil {
		return err
	}
	out, err := dec.Process(in)
	if err != nil {
		return err
	}

	if err := sampleio.WriteFile(c.Out, out, c.FullScale); err != nil {
		return err
	}

	logging.Info("Wrote pipeline output", logging.Fields{
		"path":    c.Out,
		"samples": out.Len(),
		"factor":  c.Factor,
		"cutoff":  dec.Cutoff(),
	})
	return nil
}

type AnalyzeCmd struct {
	Reference string `arg:"" type:"existingfile" help:"Stimulus fed to the pipeline"`
	Observed  string `arg:"" type:"existingfile" help:"Output captured from the pipeline"`

	Config         string  `short:"c" type:"path" help:"Config file (yaml, json or toml)"`
	Rate           float64 `help:"Reference sample rate in Hz (overrides config)"`
	ObservedRate   float64 `help:"Observed sample rate in Hz; enables the rate check"`
	Decimation     int     `help:"Integer decimation factor; 0 infers it"`
	FullScale      int     `help:"Fixed-point full scale of both files; -1 uses config" default:"-1"`
	NoSpectrograms bool    `help:"Omit spectrograms from the report"`
	Out            string  `short:"o" help:"Report file, - for stdout" default:"-"`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	reference, err := sampleio.ReadFile(c.Reference, cfg.SampleRate, cfg.FullScale)
	if err != nil {
		return err
	}

	observedRate := cfg.SampleRate
	if cfg.ObservedRate > 0 {
		observedRate = cfg.ObservedRate
	}
	observed, err := sampleio.ReadFile(c.Observed, observedRate, cfg.FullScale)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.ContextWithFields(ctx, logging.Fields{
		"reference_file": c.Reference,
		"observed_file":  c.Observed,
	})

	report, err := analysis.NewAnalyzer(cfg).Analyze(ctx, reference, observed)
	if err != nil {
		return err
	}

	if err := c.writeReport(report); err != nil {
		return err
	}

	if !report.Passed {
		for _, v := range report.Violations {
			logging.Warn("Expectation failed", logging.Fields{"violation": v})
		}
		return fmt.Errorf("%d expectation(s) failed", len(report.Violations))
	}
	return nil
}

// apply layers command-line flags over the loaded config.
func (c *AnalyzeCmd) apply(cfg *analysis.Config) {
	if c.Rate > 0 {
		cfg.SampleRate = c.Rate
	}
	if c.ObservedRate > 0 {
		cfg.ObservedRate = c.ObservedRate
	}
	if c.Decimation > 0 {
		cfg.Decimation = c.Decimation
	}
	if c.FullScale >= 0 {
		cfg.FullScale = c.FullScale
	}
	if c.NoSpectrograms {
		cfg.Spectrogram.Enabled = false
	}
}

func (c *AnalyzeCmd) writeReport(report *analysis.Report) error {
	if c.Out == "-" {
		return encodeReport(os.Stdout, report)
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := encodeReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeReport(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// setupLogging installs a zerolog-backed global logger.
func setupLogging(g *Globals) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if g.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	zl := zerolog.New(out).With().Timestamp().Logger()
	logger := logging.NewZerologLogger(zl)
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sonido-probe"),
		kong.Description("Measure the frequency response of an audio pipeline with chirp stimuli"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
	)

	if err := setupLogging(&cli.Globals); err != nil {
		ctx.FatalIfErrorf(err)
	}

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
