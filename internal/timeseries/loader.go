package timeseries

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Loader reads a time series container into a Matrix.
type Loader interface {
	Load(path string) (*Matrix, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*Matrix, error)

func (f LoaderFunc) Load(path string) (*Matrix, error) {
	return f(path)
}

// LoadError reports an unreadable or malformed input container.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading time series %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoaderFor picks a loader from the file name. Anything ending in .nii or
// .nii.gz (CIFTI dtseries included) is read as NIfTI. Delimited text files
// are read with text.
func LoaderFor(path string, text TextOptions) (Loader, error) {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".gz")

	switch filepath.Ext(name) {
	case ".nii":
		return NIfTILoader{}, nil
	case ".txt", ".csv", ".tsv":
		return NewTextLoader(text), nil
	case ".msgpack", ".mpk":
		return MsgpackLoader{}, nil
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no loader for file type %q", filepath.Ext(name))}
	}
}

// NewLoader returns a Loader that dispatches on the file name of each path.
func NewLoader(text TextOptions) Loader {
	return LoaderFunc(func(path string) (*Matrix, error) {
		l, err := LoaderFor(path, text)
		if err != nil {
			return nil, err
		}
		return l.Load(path)
	})
}

// Load reads path with the default text options.
func Load(path string) (*Matrix, error) {
	return NewLoader(DefaultTextOptions()).Load(path)
}
