// Package plot renders the diagnostic histogram of temporal means.
package plot

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the number of histogram bins.
const DefaultBins = 100

// HistogramPlotter draws a histogram of the mean vector with a vertical line
// at the threshold. The image format follows the output file extension.
type HistogramPlotter struct {
	Bins   int
	Width  vg.Length
	Height vg.Length
}

// NewHistogramPlotter returns a 100-bin, 6x4 inch plotter.
func NewHistogramPlotter() *HistogramPlotter {
	return &HistogramPlotter{
		Bins:   DefaultBins,
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// Plot renders means and threshold to path. It only reads its inputs.
func (hp *HistogramPlotter) Plot(means []float64, threshold float64, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "temporal mean"
	p.Y.Label.Text = "locations"

	hist, err := plotter.NewHist(plotter.Values(means), hp.Bins)
	if err != nil {
		return fmt.Errorf("building histogram: %w", err)
	}
	p.Add(hist)

	top := 0.0
	for _, bin := range hist.Bins {
		if bin.Weight > top {
			top = bin.Weight
		}
	}

	marker, err := plotter.NewLine(plotter.XYs{
		{X: threshold, Y: 0},
		{X: threshold, Y: top},
	})
	if err != nil {
		return fmt.Errorf("building threshold marker: %w", err)
	}
	marker.Color = color.RGBA{R: 220, A: 255}
	marker.Width = vg.Points(1.5)
	p.Add(marker)

	if err := p.Save(hp.Width, hp.Height, path); err != nil {
		return fmt.Errorf("saving plot to %s: %w", path, err)
	}
	return nil
}

// Title derives the plot title from the input path: the base name cut at its
// first dot, so "sub-01.dtseries.nii" becomes "sub-01".
func Title(inputPath string) string {
	base := filepath.Base(inputPath)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
