// Package threshold picks the intensity threshold from a sampled density.
package threshold

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultResolution is the number of grid points used when none is given.
const DefaultResolution = 1024

var (
	// ErrNoThresholdFound means the sampled density has no strict interior
	// local minimum, i.e. it looks unimodal or monotonic at this resolution.
	ErrNoThresholdFound = errors.New("no local minimum in sampled density")

	ErrInvalidResolution = errors.New("resolution must be at least 3")
	ErrInvalidRange      = errors.New("invalid evaluation range")
)

// Evaluator is anything that can be evaluated point-wise, such as a fitted KDE.
type Evaluator interface {
	Evaluate(x float64) float64
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(x float64) float64

func (f EvaluatorFunc) Evaluate(x float64) float64 {
	return f(x)
}

// Result carries the threshold together with the grid it was chosen from.
type Result struct {
	Threshold float64
	Index     int       // grid index of Threshold
	Grid      []float64 // evaluation grid, ascending
	Density   []float64 // density sampled at each grid point
	Minima    []int     // every strict local minimum, ascending
}

// Grid returns n evenly spaced points from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// LocalMinima returns the indices i in [1, len-2] whose sample is strictly
// lower than both neighbours. Endpoints never qualify and plateaus do not
// count.
func LocalMinima(samples []float64) []int {
	var minima []int
	for i := 1; i < len(samples)-1; i++ {
		if samples[i] < samples[i-1] && samples[i] < samples[i+1] {
			minima = append(minima, i)
		}
	}
	return minima
}

// Select returns the largest grid value among the local minima of samples,
// which is the rightmost dip rather than the deepest one.
func Select(grid, samples []float64) (float64, int, error) {
	if len(grid) != len(samples) {
		return 0, 0, fmt.Errorf("grid has %d points but %d samples", len(grid), len(samples))
	}

	minima := LocalMinima(samples)
	if len(minima) == 0 {
		return 0, 0, ErrNoThresholdFound
	}

	best := minima[0]
	for _, i := range minima[1:] {
		if grid[i] > grid[best] {
			best = i
		}
	}
	return grid[best], best, nil
}

// Find samples d on an n-point grid over [lo, hi] and selects the threshold.
func Find(d Evaluator, lo, hi float64, n int) (*Result, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, n)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, lo, hi)
	}

	grid := Grid(lo, hi, n)
	density := make([]float64, n)
	for i, x := range grid {
		density[i] = d.Evaluate(x)
	}

	value, index, err := Select(grid, density)
	if err != nil {
		return nil, fmt.Errorf("%w (resolution %d over [%g, %g])", err, n, lo, hi)
	}

	return &Result{
		Threshold: value,
		Index:     index,
		Grid:      grid,
		Density:   density,
		Minima:    LocalMinima(density),
	}, nil
}
