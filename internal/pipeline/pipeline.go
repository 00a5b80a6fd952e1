// Package pipeline wires the stages together: load, temporal means, density,
// threshold, mask, then the optional plot and the mask file.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/dtseries-mask/internal/density"
	"github.com/chrissnell/dtseries-mask/internal/mask"
	"github.com/chrissnell/dtseries-mask/internal/plot"
	"github.com/chrissnell/dtseries-mask/internal/threshold"
	"github.com/chrissnell/dtseries-mask/internal/timeseries"
)

// Plotter renders the diagnostic side output. It must not modify its inputs.
type Plotter interface {
	Plot(means []float64, threshold float64, title, path string) error
}

// Writer persists the mask.
type Writer interface {
	WriteMask(path string, m mask.Mask) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(path string, m mask.Mask) error

func (f WriterFunc) WriteMask(path string, m mask.Mask) error {
	return f(path, m)
}

// Options describe one subject's run.
type Options struct {
	InputPath string
	Subject   string
	Scanner   string
	OutputDir string

	Resolution          int
	FallbackResolutions []int
	Bandwidth           density.BandwidthRule
	PlotEnabled         bool
}

// Validate checks the options before any file is touched.
func (o Options) Validate() error {
	switch {
	case o.InputPath == "":
		return errors.New("input path is required")
	case o.Subject == "":
		return errors.New("subject id is required")
	case o.Scanner == "":
		return errors.New("scanner id is required")
	case o.OutputDir == "":
		return errors.New("output directory is required")
	case o.Resolution < 3:
		return fmt.Errorf("%w: got %d", threshold.ErrInvalidResolution, o.Resolution)
	}
	for _, r := range o.FallbackResolutions {
		if r < 3 {
			return fmt.Errorf("%w: fallback %d", threshold.ErrInvalidResolution, r)
		}
	}
	return nil
}

// Outcome is everything computed for one run.
type Outcome struct {
	Means      []float64
	Density    *density.KDE
	Selection  *threshold.Result
	Mask       mask.Mask
	Resolution int
	MaskPath   string
	PlotPath   string // empty when plotting was disabled or failed
}

// Pipeline runs the stages with injectable collaborators. A nil Plotter
// disables plotting regardless of Options.PlotEnabled, and a nil Logger
// discards run logs.
type Pipeline struct {
	Loader  timeseries.Loader
	Plotter Plotter
	Writer  Writer
	Logger  *zap.SugaredLogger
}

// New returns a Pipeline that picks its loader from the input extension,
// plots with the 100-bin histogram, and writes masks atomically.
func New(logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		Loader:  timeseries.NewLoader(timeseries.DefaultTextOptions()),
		Plotter: plot.NewHistogramPlotter(),
		Writer:  WriterFunc(mask.WriteFile),
		Logger:  logger,
	}
}

// Compute is the pure core: density over means, threshold at resolution, mask.
func Compute(means []float64, resolution int, rule density.BandwidthRule) (*Outcome, error) {
	kde, err := density.Fit(means, rule)
	if err != nil {
		return nil, err
	}

	sel, err := threshold.Find(kde, floats.Min(means), floats.Max(means), resolution)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Means:      means,
		Density:    kde,
		Selection:  sel,
		Mask:       mask.Build(means, sel.Threshold),
		Resolution: resolution,
	}, nil
}

// Run executes the whole pipeline for one subject.
func (p *Pipeline) Run(opts Options) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	base := p.Logger
	if base == nil {
		base = zap.NewNop().Sugar()
	}
	logger := base.With(
		"run_id", uuid.NewString(),
		"subject", opts.Subject,
		"scanner", opts.Scanner,
	)

	m, err := p.Loader.Load(opts.InputPath)
	if err != nil {
		return nil, err
	}
	locations, timepoints := m.Dims()
	logger.Infow("loaded time series", "path", opts.InputPath, "locations", locations, "timepoints", timepoints)

	means := timeseries.Means(m)

	out, err := p.computeWithFallback(logger, means, opts)
	if err != nil {
		return nil, err
	}

	ones, zeros := out.Mask.Count()
	logger.Infow("selected threshold",
		"threshold", out.Selection.Threshold,
		"samples", out.Density.N(),
		"resolution", out.Resolution,
		"bandwidth", out.Density.Bandwidth(),
		"bandwidth_rule", string(out.Density.Rule()),
		"minima", len(out.Selection.Minima),
		"masked", ones,
		"unmasked", zeros,
	)

	if opts.PlotEnabled && p.Plotter != nil {
		plotPath := PlotPath(opts.OutputDir, opts.Subject, opts.Scanner)
		if err := p.Plotter.Plot(out.Means, out.Selection.Threshold, plot.Title(opts.InputPath), plotPath); err != nil {
			logger.Warnw("diagnostic plot failed", "path", plotPath, "error", err)
		} else {
			out.PlotPath = plotPath
			logger.Debugw("wrote diagnostic plot", "path", plotPath)
		}
	}

	out.MaskPath = MaskPath(opts.OutputDir, opts.Subject, opts.Scanner)
	if err := p.Writer.WriteMask(out.MaskPath, out.Mask); err != nil {
		return nil, err
	}
	logger.Debugw("wrote mask", "path", out.MaskPath)

	return out, nil
}

// computeWithFallback retries at each fallback resolution only when no
// minimum was found. Every other failure ends the run.
func (p *Pipeline) computeWithFallback(logger *zap.SugaredLogger, means []float64, opts Options) (*Outcome, error) {
	resolutions := append([]int{opts.Resolution}, opts.FallbackResolutions...)

	var err error
	for i, res := range resolutions {
		var out *Outcome
		out, err = Compute(means, res, opts.Bandwidth)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, threshold.ErrNoThresholdFound) {
			return nil, err
		}
		if i < len(resolutions)-1 {
			logger.Warnw("no threshold at resolution, retrying", "resolution", res, "next", resolutions[i+1])
		}
	}
	return nil, err
}
