// dtseries-mask computes an intensity threshold for one subject's time series
// and writes a binary signal/background mask.
//
// Usage:
//
//	dtseries-mask [flags] <input-path> <subject-id> <output-directory> <scanner-id>
//
// The mask is written to <output-directory>/allMasks/<subject-id>_<scanner-id>_mask.txt
// and, with -plot, a histogram to <output-directory>/allPlots/<subject-id>_<scanner-id>.png.
// Both directories must already exist.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/dtseries-mask/internal/density"
	"github.com/chrissnell/dtseries-mask/internal/log"
	"github.com/chrissnell/dtseries-mask/internal/pipeline"
	"github.com/chrissnell/dtseries-mask/internal/timeseries"
	"github.com/chrissnell/dtseries-mask/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

var errArgumentCount = errors.New("incorrect number of inputs")

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("dtseries-mask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dtseries-mask [flags] <input-path> <subject-id> <output-directory> <scanner-id>\n")
		fs.PrintDefaults()
	}

	cfgFile := fs.String("config", "", "Optional YAML run configuration")
	debug := fs.Bool("debug", false, "Turn on debugging output")
	plotFlag := fs.Bool("plot", false, "Write the diagnostic histogram to <output-directory>/allPlots")
	resolution := fs.Int("resolution", 0, "Density grid resolution (overrides the config file)")
	showVersion := fs.Bool("version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stderr, "dtseries-mask %s\n", version)
		return 0
	}

	if fs.NArg() != 4 {
		fmt.Fprintf(stderr, "Error: %v (got %d, want 4): exiting...\n", errArgumentCount, fs.NArg())
		fs.Usage()
		return 1
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		return 1
	}
	if *plotFlag {
		cfg.Plot.Enabled = true
	}
	if *resolution != 0 {
		cfg.Threshold.Resolution = *resolution
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid configuration: %v", err)
		return 1
	}

	rule, err := density.ParseBandwidthRule(cfg.Threshold.Bandwidth)
	if err != nil {
		log.Errorf("Invalid configuration: %v", err)
		return 1
	}

	opts := pipeline.Options{
		InputPath:           fs.Arg(0),
		Subject:             fs.Arg(1),
		OutputDir:           fs.Arg(2),
		Scanner:             fs.Arg(3),
		Resolution:          cfg.Threshold.Resolution,
		FallbackResolutions: cfg.Threshold.FallbackResolutions,
		Bandwidth:           rule,
		PlotEnabled:         cfg.Plot.Enabled,
	}

	p := pipeline.New(log.GetSugaredLogger())
	p.Loader = timeseries.NewLoader(timeseries.TextOptions{
		Transpose: cfg.Text.Transpose,
		SkipRows:  cfg.Text.SkipRows,
		Comment:   cfg.Text.Comment,
	})

	if _, err := p.Run(opts); err != nil {
		log.Errorf("Mask generation failed: %v", err)
		return 1
	}
	return 0
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		log.Debugf("No config file given, using defaults")
		return config.DefaultConfig(), nil
	}

	filename, _ := filepath.Abs(cfgFile)
	var provider config.ConfigProvider = config.NewYAMLProvider(filename)

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
	}
	log.Debugf("Loaded configuration from %s", filename)
	return cfgData, nil
}
