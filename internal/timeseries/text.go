package timeseries

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TextOptions holds options for delimited text matrices.
type TextOptions struct {
	Transpose bool   // Rows are timepoints and columns are locations
	Comment   string // Lines starting with this prefix are skipped (default: "#")
	SkipRows  int    // Number of leading non-comment rows to skip, e.g. a header
}

// DefaultTextOptions returns default options for text matrices.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Comment: "#",
	}
}

// TextLoader reads a matrix with one location per line. Values may be
// separated by commas, tabs, or runs of spaces.
type TextLoader struct {
	opts TextOptions
}

// NewTextLoader creates a TextLoader with the given options
func NewTextLoader(opts TextOptions) *TextLoader {
	return &TextLoader{opts: opts}
}

// Load reads the text matrix at path.
func (l *TextLoader) Load(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	m, err := l.LoadFromReader(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// LoadFromReader reads a text matrix from r.
func (l *TextLoader) LoadFromReader(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var rows [][]float64
	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || (l.opts.Comment != "" && strings.HasPrefix(line, l.opts.Comment)) {
			continue
		}
		if skipped < l.opts.SkipRows {
			skipped++
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == ';'
		})
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", lineNo, i+1, err)
			}
			row[i] = v
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d has %d values, expected %d", lineNo, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptyMatrix
	}

	nRows, nCols := len(rows), len(rows[0])
	if l.opts.Transpose {
		data := make([]float64, nRows*nCols)
		for t, row := range rows {
			for loc, v := range row {
				data[loc*nRows+t] = v
			}
		}
		return NewMatrix(nCols, nRows, data)
	}

	data := make([]float64, 0, nRows*nCols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return NewMatrix(nRows, nCols, data)
}
