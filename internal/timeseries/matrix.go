// Package timeseries holds the (locations x timepoints) matrix the mask is
// computed from and the loaders that produce it.
package timeseries

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptyMatrix = errors.New("time series matrix has no locations or no timepoints")

// Matrix is a read-only time series matrix. Row i is the series of location i.
type Matrix struct {
	data *mat.Dense
}

// NewMatrix builds a Matrix from row-major data: data[loc*timepoints+t].
// The slice is owned by the Matrix afterwards.
func NewMatrix(locations, timepoints int, data []float64) (*Matrix, error) {
	if locations <= 0 || timepoints <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyMatrix, locations, timepoints)
	}
	if len(data) != locations*timepoints {
		return nil, fmt.Errorf("matrix data has %d values, want %d (%d locations x %d timepoints)",
			len(data), locations*timepoints, locations, timepoints)
	}
	return &Matrix{data: mat.NewDense(locations, timepoints, data)}, nil
}

// Dims returns (locations, timepoints).
func (m *Matrix) Dims() (int, int) {
	return m.data.Dims()
}

// At returns the sample of location loc at timepoint t.
func (m *Matrix) At(loc, t int) float64 {
	return m.data.At(loc, t)
}

// Row returns a copy of the series for one location.
func (m *Matrix) Row(loc int) []float64 {
	return mat.Row(nil, loc, m.data)
}

// Means returns the temporal mean of every location, in location order.
func Means(m *Matrix) []float64 {
	locations, _ := m.Dims()
	means := make([]float64, locations)
	for i := range means {
		means[i] = stat.Mean(m.data.RawRowView(i), nil)
	}
	return means
}
