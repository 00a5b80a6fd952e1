package timeseries

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackMatrix is the msgpack container layout: row-major data with one row
// per location.
type MsgpackMatrix struct {
	Locations  int       `msgpack:"locations"`
	Timepoints int       `msgpack:"timepoints"`
	Data       []float64 `msgpack:"data"`
}

// MsgpackLoader reads matrices exported as msgpack maps.
type MsgpackLoader struct{}

func (MsgpackLoader) Load(path string) (*Matrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var mm MsgpackMatrix
	if err := msgpack.Unmarshal(raw, &mm); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m, err := NewMatrix(mm.Locations, mm.Timepoints, mm.Data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}
